package logger

import "fmt"

type Logger interface {
	Debug(log ...any)
	Error(log ...any)
}

type PrefixedLogger struct {
	Prefix string
}

func (pl PrefixedLogger) Debug(log ...any) {
	fmt.Println("[Prefix: "+pl.Prefix+"] Debug:", log)
}

func (pl PrefixedLogger) Error(log ...any) {
	fmt.Println("[Prefix: "+pl.Prefix+"] Error: ", log)
}

var _ Logger = &PrefixedLogger{}

// NilLogger discards everything. Used in tests that don't care about output.
type NilLogger struct{}

func (NilLogger) Debug(log ...any) {}
func (NilLogger) Error(log ...any) {}

var _ Logger = NilLogger{}
