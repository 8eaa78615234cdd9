package nvrtc

import (
	"sync"
	"testing"

	"github.com/gpujit/gpujit/backend"
)

const kernelSource = `extern "C" __global__ void my_kernel() {}`

// Session creation from independent NVRTC instances shares one
// process-wide library load, so concurrent first uses must agree: either
// the library is available to all of them or to none. Runs with and
// without libnvrtc installed.
func TestConcurrentInstancesShareLoad(t *testing.T) {
	const workers = 8
	var wg sync.WaitGroup
	handles := make([]backend.Handle, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = New().Create(kernelSource)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if (errs[i] == nil) != (errs[0] == nil) {
			t.Fatalf("instance %d disagrees about library availability: %v vs %v", i, errs[i], errs[0])
		}
	}
	for i := range handles {
		if errs[i] != nil {
			continue
		}
		if handles[i] == backend.NoHandle {
			t.Errorf("instance %d: created session has no handle", i)
			continue
		}
		if err := New().Destroy(handles[i]); err != nil {
			t.Errorf("instance %d: destroy: %v", i, err)
		}
	}
}
