package convert

import (
	"reflect"

	"github.com/godbus/dbus/v5"
)

var (
	boolSignature   = dbus.SignatureOfType(reflect.TypeOf(false))
	stringSignature = dbus.SignatureOfType(reflect.TypeOf(""))
	uint32Signature = dbus.SignatureOfType(reflect.TypeOf(uint32(0)))
)

func FromBool(input bool) dbus.Variant {
	return dbus.MakeVariantWithSignature(input, boolSignature)
}

func FromString(input string) dbus.Variant {
	return dbus.MakeVariantWithSignature(input, stringSignature)
}

func FromUint32(input uint32) dbus.Variant {
	return dbus.MakeVariantWithSignature(input, uint32Signature)
}

// Vardict is an a{sv} options argument. The Set helpers leave zero values
// out so the portal applies its own defaults.
type Vardict map[string]dbus.Variant

func (d Vardict) SetBool(key string, value bool) {
	if value {
		d[key] = FromBool(value)
	}
}

func (d Vardict) SetString(key, value string) {
	if value != "" {
		d[key] = FromString(value)
	}
}

func (d Vardict) SetUint32(key string, value uint32) {
	if value != 0 {
		d[key] = FromUint32(value)
	}
}
