//go:build linux

package nvrtc

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/hashicorp/go-multierror"

	"github.com/gpujit/gpujit/backend"
)

// Versioned sonames are tried first so a matching toolkit wins over a
// bare development symlink.
var sonames = []string{
	"libnvrtc.so.12",
	"libnvrtc.so.11.2",
	"libnvrtc.so",
}

type libFuncs struct {
	createProgram  func(prog *uintptr, src string, name string, numHeaders int32, headers uintptr, includeNames uintptr) int32
	destroyProgram func(prog *uintptr) int32
	addNameExpr    func(prog uintptr, expr string) int32
	compileProgram func(prog uintptr, numOptions int32, options uintptr) int32
	getPTXSize     func(prog uintptr, size *uint64) int32
	getPTX         func(prog uintptr, buf *byte) int32
	getCUBINSize   func(prog uintptr, size *uint64) int32
	getCUBIN       func(prog uintptr, buf *byte) int32
	getLTOIRSize   func(prog uintptr, size *uint64) int32
	getLTOIR       func(prog uintptr, buf *byte) int32
	getLoweredName func(prog uintptr, expr string, lowered *uintptr) int32
	getLogSize     func(prog uintptr, size *uint64) int32
	getLog         func(prog uintptr, buf *byte) int32
	getErrorString func(result int32) string
	version        func(major, minor *int32) int32
}

var fn libFuncs

func load() error {
	var errs *multierror.Error
	var lib uintptr
	for _, name := range sonames {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			lib = handle
			break
		}
		errs = multierror.Append(errs, err)
	}
	if lib == 0 {
		return fmt.Errorf("nvrtc: cannot load libnvrtc: %w", errs.ErrorOrNil())
	}

	purego.RegisterLibFunc(&fn.createProgram, lib, "nvrtcCreateProgram")
	purego.RegisterLibFunc(&fn.destroyProgram, lib, "nvrtcDestroyProgram")
	purego.RegisterLibFunc(&fn.addNameExpr, lib, "nvrtcAddNameExpression")
	purego.RegisterLibFunc(&fn.compileProgram, lib, "nvrtcCompileProgram")
	purego.RegisterLibFunc(&fn.getPTXSize, lib, "nvrtcGetPTXSize")
	purego.RegisterLibFunc(&fn.getPTX, lib, "nvrtcGetPTX")
	purego.RegisterLibFunc(&fn.getCUBINSize, lib, "nvrtcGetCUBINSize")
	purego.RegisterLibFunc(&fn.getCUBIN, lib, "nvrtcGetCUBIN")
	purego.RegisterLibFunc(&fn.getLoweredName, lib, "nvrtcGetLoweredName")
	purego.RegisterLibFunc(&fn.getLogSize, lib, "nvrtcGetProgramLogSize")
	purego.RegisterLibFunc(&fn.getLog, lib, "nvrtcGetProgramLog")
	purego.RegisterLibFunc(&fn.getErrorString, lib, "nvrtcGetErrorString")
	purego.RegisterLibFunc(&fn.version, lib, "nvrtcVersion")

	// LTO IR retrieval only exists in CUDA 12+ toolkits.
	if _, err := purego.Dlsym(lib, "nvrtcGetLTOIRSize"); err == nil {
		purego.RegisterLibFunc(&fn.getLTOIRSize, lib, "nvrtcGetLTOIRSize")
		purego.RegisterLibFunc(&fn.getLTOIR, lib, "nvrtcGetLTOIR")
	}
	return nil
}

func check(result int32, h backend.Handle) error {
	if result == 0 {
		return nil
	}
	return backend.NewError(backend.Status(result), fn.getErrorString(result), h)
}

func (n *NVRTC) createProgram(source string) (backend.Handle, error) {
	var prog uintptr
	if err := check(fn.createProgram(&prog, source, "", 0, 0, 0), backend.NoHandle); err != nil {
		return backend.NoHandle, err
	}
	return backend.Handle(prog), nil
}

func (n *NVRTC) destroyProgram(h backend.Handle) error {
	prog := uintptr(h)
	return check(fn.destroyProgram(&prog), h)
}

func (n *NVRTC) addNameExpression(h backend.Handle, expr string) error {
	return check(fn.addNameExpr(uintptr(h), expr), h)
}

func (n *NVRTC) compileProgram(h backend.Handle, args []string) error {
	if len(args) == 0 {
		return check(fn.compileProgram(uintptr(h), 0, 0), h)
	}
	// Build the char** argument vector: NUL-terminated copies of each
	// argument, then an array of pointers to them. Go's collector does not
	// move heap objects, so the raw addresses stay valid for the duration
	// of the call; KeepAlive pins the backing storage.
	cstrs := make([][]byte, len(args))
	ptrs := make([]uintptr, len(args))
	for i, arg := range args {
		cstrs[i] = append([]byte(arg), 0)
		ptrs[i] = uintptr(unsafe.Pointer(&cstrs[i][0]))
	}
	result := fn.compileProgram(uintptr(h), int32(len(args)), uintptr(unsafe.Pointer(&ptrs[0])))
	runtime.KeepAlive(cstrs)
	runtime.KeepAlive(ptrs)
	return check(result, h)
}

func (n *NVRTC) outputSize(h backend.Handle, format backend.TargetFormat) (int, error) {
	sizeFn, _, err := formatFuncs(format, h)
	if err != nil {
		return 0, err
	}
	var size uint64
	if err := check(sizeFn(uintptr(h), &size), h); err != nil {
		return 0, err
	}
	return int(size), nil
}

func (n *NVRTC) output(h backend.Handle, format backend.TargetFormat, buf []byte) error {
	_, fetchFn, err := formatFuncs(format, h)
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	return check(fetchFn(uintptr(h), &buf[0]), h)
}

func formatFuncs(format backend.TargetFormat, h backend.Handle) (func(uintptr, *uint64) int32, func(uintptr, *byte) int32, error) {
	switch format {
	case backend.PTX:
		return fn.getPTXSize, fn.getPTX, nil
	case backend.Cubin:
		return fn.getCUBINSize, fn.getCUBIN, nil
	case backend.LTOIR:
		if fn.getLTOIRSize == nil {
			return nil, nil, backend.NewError(backend.InvalidInput,
				"ltoir output requires a CUDA 12+ nvrtc library", h)
		}
		return fn.getLTOIRSize, fn.getLTOIR, nil
	default:
		return nil, nil, backend.NewError(backend.InvalidInput,
			fmt.Sprintf("no fetch entry points for format %q", format), h)
	}
}

func (n *NVRTC) loweredName(h backend.Handle, expr string) (string, error) {
	var lowered uintptr
	if err := check(fn.getLoweredName(uintptr(h), expr, &lowered), h); err != nil {
		return "", err
	}
	return goString(lowered), nil
}

func (n *NVRTC) logSize(h backend.Handle) (int, error) {
	var size uint64
	if err := check(fn.getLogSize(uintptr(h), &size), h); err != nil {
		return 0, err
	}
	return int(size), nil
}

func (n *NVRTC) log(h backend.Handle, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return check(fn.getLog(uintptr(h), &buf[0]), h)
}

func (n *NVRTC) version() (int, int, error) {
	var major, minor int32
	if err := check(fn.version(&major, &minor), backend.NoHandle); err != nil {
		return 0, 0, err
	}
	return int(major), int(minor), nil
}

// goString copies a NUL-terminated C string. The backend owns the memory;
// the copy detaches us from its lifetime.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}
