//go:build !linux

package nvrtc

import (
	"errors"

	"github.com/gpujit/gpujit/backend"
)

// NVRTC targets Linux; on other platforms every call reports the library
// as unavailable rather than failing at build time, which keeps the
// default backend selectable everywhere.

var errUnsupportedPlatform = errors.New("nvrtc: libnvrtc is only supported on linux")

func load() error {
	return errUnsupportedPlatform
}

func (n *NVRTC) createProgram(string) (backend.Handle, error) {
	return backend.NoHandle, errUnsupportedPlatform
}

func (n *NVRTC) destroyProgram(backend.Handle) error {
	return errUnsupportedPlatform
}

func (n *NVRTC) addNameExpression(backend.Handle, string) error {
	return errUnsupportedPlatform
}

func (n *NVRTC) compileProgram(backend.Handle, []string) error {
	return errUnsupportedPlatform
}

func (n *NVRTC) outputSize(backend.Handle, backend.TargetFormat) (int, error) {
	return 0, errUnsupportedPlatform
}

func (n *NVRTC) output(backend.Handle, backend.TargetFormat, []byte) error {
	return errUnsupportedPlatform
}

func (n *NVRTC) loweredName(backend.Handle, string) (string, error) {
	return "", errUnsupportedPlatform
}

func (n *NVRTC) logSize(backend.Handle) (int, error) {
	return 0, errUnsupportedPlatform
}

func (n *NVRTC) log(backend.Handle, []byte) error {
	return errUnsupportedPlatform
}

func (n *NVRTC) version() (int, int, error) {
	return 0, 0, errUnsupportedPlatform
}
