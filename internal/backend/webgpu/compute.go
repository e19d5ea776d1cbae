//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// kernel describes one compute dispatch. Inputs bind at 0..n-1, the output at
// n and the uniform params at n+1.
type kernel struct {
	name   string
	code   string
	inputs [][]byte
	output uint64 // output size in bytes
	params []uint32
	groups [3]uint32
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil) derived from the shader bindings.
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer and uploads data into it.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer packs params as little-endian u32 into a buffer
// rounded up to the 16-byte uniform alignment.
func (b *Backend) createUniformBuffer(params []uint32) (*wgpu.Buffer, uint64) {
	size := uint64(len(params) * 4)
	alignedSize := (size + 15) &^ 15

	data := make([]byte, alignedSize)
	for i, p := range params {
		binary.LittleEndian.PutUint32(data[i*4:], p)
	}
	return b.createBuffer(data, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst), alignedSize
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a staging buffer since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mapped)
	staging.Unmap()

	return result, nil
}

// run uploads the inputs, dispatches k and returns the output bytes.
func (b *Backend) run(k kernel) ([]byte, error) {
	if k.output == 0 {
		return nil, nil
	}

	shader := b.compileShader(k.name, k.code)
	pipeline := b.getOrCreatePipeline(k.name, shader)

	entries := make([]wgpu.BindGroupEntry, 0, len(k.inputs)+2)
	for i, data := range k.inputs {
		buf := b.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buf.Release()
		//nolint:gosec // G115: binding indices and sizes are small and non-negative
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, uint64(len(data))))
	}

	out := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  k.output,
	})
	defer out.Release()
	//nolint:gosec // G115: binding index is small
	outBinding := uint32(len(k.inputs))
	entries = append(entries, wgpu.BufferBindingEntry(outBinding, out, 0, k.output))

	params, paramsSize := b.createUniformBuffer(k.params)
	defer params.Release()
	entries = append(entries, wgpu.BufferBindingEntry(outBinding+1, params, 0, paramsSize))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(k.groups[0], k.groups[1], k.groups[2])
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	return b.readBuffer(out, k.output)
}

// groupsFor returns ceil(n / size) as a dispatch dimension.
func groupsFor(n, size int) uint32 {
	//nolint:gosec // G115: workgroup count is non-negative
	return uint32((n + size - 1) / size)
}

// u32 converts non-negative tensor dimensions for kernel params.
func u32(values ...int) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		//nolint:gosec // G115: shape dimensions are non-negative
		out[i] = uint32(v)
	}
	return out
}
