package app

import (
	"io"

	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/modules/env_vars"
	"github.com/specialistvlad/dataflowgo/modules/http_request"
	"github.com/specialistvlad/dataflowgo/modules/merge"
	"github.com/specialistvlad/dataflowgo/modules/print"
	"github.com/specialistvlad/dataflowgo/modules/template"
)

// coreModules is the definitive list of all handler modules that are
// compiled into the dataflowgo binary. print writes to outW.
func coreModules(outW io.Writer) []handlers.Module {
	return []handlers.Module{
		&env_vars.Module{},
		&print.Module{Out: outW},
		&merge.Module{},
		&template.Module{},
		&http_request.Module{},
	}
}
