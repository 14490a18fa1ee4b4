package appError

import (
	"fmt"
)

// Err ... Application error definition, ErrCode carries the equivalent HTTP status
type Err struct {
	ErrCode int
	ErrType string
	Err     error
	ErrData interface{}
}

func (e Err) Error() string {
	return fmt.Sprintf("%s", e.Err)
}
