//go:build windows

package webgpu

// workgroupSize is the number of threads per 1-D workgroup.
const workgroupSize = 256

// spatialTile is the x and y extent of the 8x8 workgroups used by conv and pooling.
const spatialTile = 8

// binaryShader returns an element-wise kernel computing result = a <op> b.
func binaryShader(op string) string {
	return `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = a[idx] ` + op + ` b[idx];
    }
}
`
}

var (
	addShader = binaryShader("+")
	subShader = binaryShader("-")
	mulShader = binaryShader("*")
	divShader = binaryShader("/")
)

// reluShader applies ReLU activation: result = max(0, x).
const reluShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = max(0.0, input[idx]);
    }
}
`

// sigmoidShader applies sigmoid activation, branching on the sign of x so
// exp never overflows.
const sigmoidShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        if (x >= 0.0) {
            result[idx] = 1.0 / (1.0 + exp(-x));
        } else {
            let e = exp(x);
            result[idx] = e / (1.0 + e);
        }
    }
}
`

// matmulShader computes C = A @ B for A [M, K] and B [K, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }
    result[row * params.N + col] = sum;
}
`

// conv2dShader performs 2D convolution with symmetric zero padding.
// Input [batch, in_channels, H, W], kernel [out_channels, in_channels, KH, KW].
// One invocation per output element; z indexes batch*out_channels.
const conv2dShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read> kernel: array<f32>;
@group(0) @binding(2) var<storage, read_write> output: array<f32>;

struct Params {
    batch: u32,
    in_channels: u32,
    in_height: u32,
    in_width: u32,
    out_channels: u32,
    kernel_h: u32,
    kernel_w: u32,
    stride: u32,
    padding: u32,
    out_height: u32,
    out_width: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let b = global_id.z / params.out_channels;
    let oc = global_id.z % params.out_channels;
    let oh = global_id.y;
    let ow = global_id.x;
    if (b >= params.batch || oh >= params.out_height || ow >= params.out_width) {
        return;
    }

    let plane = params.in_height * params.in_width;
    let taps = params.kernel_h * params.kernel_w;
    var sum: f32 = 0.0;
    for (var ic: u32 = 0u; ic < params.in_channels; ic = ic + 1u) {
        for (var kh: u32 = 0u; kh < params.kernel_h; kh = kh + 1u) {
            let ih = i32(oh * params.stride + kh) - i32(params.padding);
            if (ih < 0 || ih >= i32(params.in_height)) {
                continue;
            }
            for (var kw: u32 = 0u; kw < params.kernel_w; kw = kw + 1u) {
                let iw = i32(ow * params.stride + kw) - i32(params.padding);
                if (iw < 0 || iw >= i32(params.in_width)) {
                    continue;
                }
                let in_idx = (b * params.in_channels + ic) * plane + u32(ih) * params.in_width + u32(iw);
                let k_idx = (oc * params.in_channels + ic) * taps + kh * params.kernel_w + kw;
                sum = sum + input[in_idx] * kernel[k_idx];
            }
        }
    }

    let out_idx = ((b * params.out_channels + oc) * params.out_height + oh) * params.out_width + ow;
    output[out_idx] = sum;
}
`

// maxPool2dShader performs 2D max pooling; padded positions are skipped.
const maxPool2dShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> output: array<f32>;

struct Params {
    batch: u32,
    channels: u32,
    in_height: u32,
    in_width: u32,
    kernel_size: u32,
    stride: u32,
    padding: u32,
    out_height: u32,
    out_width: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let b = global_id.z / params.channels;
    let c = global_id.z % params.channels;
    let oh = global_id.y;
    let ow = global_id.x;
    if (b >= params.batch || oh >= params.out_height || ow >= params.out_width) {
        return;
    }

    let base = (b * params.channels + c) * params.in_height * params.in_width;
    var max_val: f32 = -3.402823e+38; // -FLT_MAX
    for (var kh: u32 = 0u; kh < params.kernel_size; kh = kh + 1u) {
        let ih = i32(oh * params.stride + kh) - i32(params.padding);
        if (ih < 0 || ih >= i32(params.in_height)) {
            continue;
        }
        for (var kw: u32 = 0u; kw < params.kernel_size; kw = kw + 1u) {
            let iw = i32(ow * params.stride + kw) - i32(params.padding);
            if (iw < 0 || iw >= i32(params.in_width)) {
                continue;
            }
            max_val = max(max_val, input[base + u32(ih) * params.in_width + u32(iw)]);
        }
    }

    let out_idx = ((b * params.channels + c) * params.out_height + oh) * params.out_width + ow;
    output[out_idx] = max_val;
}
`
