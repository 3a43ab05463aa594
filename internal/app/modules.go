package app

import (
	"github.com/vk/stagehand/internal/registry"
	"github.com/vk/stagehand/modules/echo"
	"github.com/vk/stagehand/modules/fetch"
	"github.com/vk/stagehand/modules/wordcount"
)

// coreModules is the definitive list of all app modules that are compiled
// into the stagehand binary.
var coreModules = []registry.Module{
	&echo.Module{},
	&wordcount.Module{},
	&fetch.Module{},
}
