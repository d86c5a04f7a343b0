package session

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"go2tv.app/displaymedia/internal/apis"
	"go2tv.app/displaymedia/internal/convert"
)

const (
	interfaceName = "org.freedesktop.portal.Session"
	closeCallName = interfaceName + ".Close"
	tokenPrefix   = "displaymedia"
)

func Close(path dbus.ObjectPath) error {
	return apis.CallOnObject(path, closeCallName)
}

var (
	tokenSource  io.Reader = rand.Reader
	tokenCounter atomic.Uint64
)

// NewToken returns a handle token usable as an object path element. When
// the random source fails it falls back to a process-wide counter.
func NewToken() string {
	str := strings.Builder{}
	str.WriteString(tokenPrefix)
	if a, err := rand.Int(tokenSource, big.NewInt(1<<32)); err == nil {
		str.WriteString(strconv.FormatUint(a.Uint64(), 16))
	} else {
		str.WriteString("c")
		str.WriteString(strconv.FormatUint(tokenCounter.Add(1), 16))
	}
	return str.String()
}

func GenerateToken() dbus.Variant {
	return convert.FromString(NewToken())
}
