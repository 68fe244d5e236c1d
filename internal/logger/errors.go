package logger

import "github.com/aleister1102/sharewatch/internal/common/errorwrapper"

func errorUnknownLevel(level string) error {
	return errorwrapper.NewError("unknown log level '%s'", level)
}
