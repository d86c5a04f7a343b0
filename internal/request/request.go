package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"go2tv.app/displaymedia/internal/apis"
	"go2tv.app/displaymedia/internal/session"
)

var ErrUnexpectedResponse = errors.New("unexpected response from dbus")

const (
	interfaceName  = "org.freedesktop.portal.Request"
	responseMember = "Response"
	responseName   = interfaceName + "." + responseMember
	closeCallName  = interfaceName + ".Close"
	pathPrefix     = apis.ObjectPath + "/request/"
)

type ResponseStatus = uint32

const (
	Success   ResponseStatus = 0
	Cancelled ResponseStatus = 1
	Ended     ResponseStatus = 2
)

func Close(path dbus.ObjectPath) error {
	return apis.CallOnObject(path, closeCallName)
}

// PathFor predicts the request object path the portal creates for a call
// made by sender with handle_token token.
func PathFor(sender, token string) dbus.ObjectPath {
	sender = strings.TrimPrefix(sender, ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	return dbus.ObjectPath(pathPrefix + sender + "/" + token)
}

// Pending waits for the Response signal of one portal request. It must be
// created before the method call so that a fast response is not missed.
type Pending struct {
	Token string
	Path  dbus.ObjectPath
	sub   *apis.Subscription
}

func Prepare() (*Pending, error) {
	sender, err := apis.UniqueName()
	if err != nil {
		return nil, err
	}
	token := session.NewToken()
	path := PathFor(sender, token)

	sub, err := apis.ListenOnSignal(path, interfaceName, responseMember)
	if err != nil {
		return nil, err
	}
	return &Pending{Token: token, Path: path, sub: sub}, nil
}

// Wait blocks until the portal answers. returned is the request path the
// method call handed back; older portals may not honour handle_token.
func (p *Pending) Wait(returned dbus.ObjectPath) (ResponseStatus, map[string]dbus.Variant, error) {
	defer func() { _ = p.sub.Close() }()

	if returned != "" && returned != p.Path {
		if err := p.sub.Close(); err != nil {
			return Ended, nil, err
		}
		sub, err := apis.ListenOnSignal(returned, interfaceName, responseMember)
		if err != nil {
			return Ended, nil, err
		}
		p.sub, p.Path = sub, returned
	}

	for signal := range p.sub.C {
		if signal.Path != p.Path || signal.Name != responseName {
			continue
		}
		return DecodeResponse(signal.Body)
	}
	return Ended, nil, fmt.Errorf("%w: signal channel closed", ErrUnexpectedResponse)
}

// DecodeResponse unpacks the (u, a{sv}) body of a Response signal.
func DecodeResponse(body []any) (ResponseStatus, map[string]dbus.Variant, error) {
	if len(body) != 2 {
		return Ended, nil, fmt.Errorf("%w: body has %d fields", ErrUnexpectedResponse, len(body))
	}

	status, ok := body[0].(uint32)
	if !ok {
		return Ended, nil, fmt.Errorf("%w: status has type %T", ErrUnexpectedResponse, body[0])
	}
	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return Ended, nil, fmt.Errorf("%w: results have type %T", ErrUnexpectedResponse, body[1])
	}
	return status, results, nil
}

// Close releases the subscription when the method call never happened or
// failed.
func (p *Pending) Close() error {
	return p.sub.Close()
}
