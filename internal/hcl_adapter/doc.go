// Package hcl_adapter loads flow definitions written in HCL.
//
// A flow directory holds one flow block and any number of builder blocks:
//
//	flow "greeting" {
//	  target     = "greeting"
//	  transients = ["upper_name"]
//	  looping    = true
//	}
//
//	builder "shout" {
//	  uses     = "template"
//	  consumes = ["name"]
//	  produces = "upper_name"
//	  arguments {
//	    value = upper(name)
//	  }
//	}
//
// Argument expressions are kept unevaluated when the handler's input field
// is an hcl.Expression, so they can refer to consumed items at run time.
package hcl_adapter
