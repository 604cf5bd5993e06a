package novadoc

import (
	"github.com/tuannm99/novadoc/internal/engine"
	"github.com/tuannm99/novadoc/internal/sql/executor"
)

// Package novadoc is the top-level facade for the NovaDoc document engine.
type (
	Database = engine.Database
	Options  = engine.Options
	Result   = executor.Result
	Field    = executor.Field
	Group    = executor.Group
)
