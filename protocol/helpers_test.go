package protocol_test

import (
	"errors"

	"github.com/momentics/hioload-wsclient/api"
)

func asProtocolError(err error, pe **api.ProtocolError) bool {
	return errors.As(err, pe)
}

func asHandshakeError(err error, he **api.HandshakeError) bool {
	return errors.As(err, he)
}
