package foreign

import (
	"github.com/gorilla/websocket"

	"sentra/internal/value"
)

// wsLibrary backs require("ws") (SPEC_FULL.md §6.6): dial(url, onMessage)
// opens a client connection and feeds every inbound text frame to onMessage
// — a Sentra lambda invoked through the very same foreign.Callback hook
// that lets any native library call back into script code.
func wsLibrary(cb Callback) *value.NativeLibrary {
	return &value.NativeLibrary{
		Name: "ws",
		Fields: map[string]value.Value{
			"dial": &value.NativeFunction{Name: "dial", Fn: func(args []value.Value, innerCB Callback) (value.Value, error) {
				return dial(args, pickCallback(cb, innerCB))
			}},
		},
	}
}

func pickCallback(outer, inner Callback) Callback {
	if inner != nil {
		return inner
	}
	return outer
}

func dial(args []value.Value, cb Callback) (value.Value, error) {
	if len(args) != 2 {
		return value.NewError(3, "dial expects (url, onMessage)"), nil
	}
	url, ok := value.Deref(args[0]).(string)
	if !ok {
		return value.NewError(1, "dial expects a url string"), nil
	}
	onMessage := args[1]
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return value.NewError(5, err.Error()), nil
	}
	go func() {
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if _, err := cb(onMessage, []value.Value{string(msg)}); err != nil {
				return
			}
		}
	}()
	return nil, nil
}
