package apis

import (
	"github.com/godbus/dbus/v5"
)

const (
	ObjectName        = "org.freedesktop.portal.Desktop"
	ObjectPath        = "/org/freedesktop/portal/desktop"
	CallBaseName      = "org.freedesktop.portal"
	PropertiesGetName = "org.freedesktop.DBus.Properties.Get"
)

func Call(callName string, args ...any) (any, error) {
	call, err := callOnObject(ObjectPath, callName, args...)
	if err != nil {
		return nil, err
	}

	var result any
	err = call.Store(&result)
	return result, err
}

func CallOnObject(path dbus.ObjectPath, callName string, args ...any) error {
	_, err := callOnObject(path, callName, args...)
	return err
}

func callOnObject(path dbus.ObjectPath, callName string, args ...any) (*dbus.Call, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	obj := conn.Object(ObjectName, path)
	call := obj.Call(callName, 0, args...)
	return call, call.Err
}

func GetProperty(interfaceName, property string) (any, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	obj := conn.Object(ObjectName, ObjectPath)
	call := obj.Call(PropertiesGetName, 0, interfaceName, property)
	if call.Err != nil {
		return nil, call.Err
	}

	var value any
	err = call.Store(&value)
	return value, err
}

// UniqueName returns the caller's unique bus name, e.g. ":1.42".
func UniqueName() (string, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return "", err
	}
	names := conn.Names()
	if len(names) == 0 {
		return "", dbus.ErrClosed
	}
	return names[0], nil
}

// Subscription delivers one kind of signal emitted on one object path.
type Subscription struct {
	conn    *dbus.Conn
	options []dbus.MatchOption
	C       chan *dbus.Signal
}

func ListenOnSignal(path dbus.ObjectPath, iface, signalName string) (*Subscription, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = ObjectPath
	}

	options := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(iface),
		dbus.WithMatchMember(signalName),
	}
	if err := conn.AddMatchSignal(options...); err != nil {
		return nil, err
	}

	sub := &Subscription{conn: conn, options: options, C: make(chan *dbus.Signal, 8)}
	conn.Signal(sub.C)
	return sub, nil
}

// Close stops delivery and removes the bus match rule.
func (s *Subscription) Close() error {
	s.conn.RemoveSignal(s.C)
	return s.conn.RemoveMatchSignal(s.options...)
}
