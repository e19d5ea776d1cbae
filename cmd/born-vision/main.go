// Package main provides the born-vision CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/born-ml/vision/backend/cpu"
	"github.com/born-ml/vision/backend/webgpu"
	"github.com/born-ml/vision/blocks"
	"github.com/born-ml/vision/nn"
	"github.com/born-ml/vision/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "born-vision:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "born-vision %s\n", version)
		return nil
	case "summary":
		return summary(args[1:], out)
	case "help", "-h", "--help":
		usage(out)
		return nil
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "born-vision - convolutional building blocks for Go")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  summary    Build a block, run a random batch through it and report shapes")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Run 'born-vision summary -h' for summary flags.")
}

// summaryOptions are the flags of the summary command.
type summaryOptions struct {
	block     string
	in, out   int
	batch     int
	size      int
	reduction int
	ratio     int
	seed      uint64
	backend   string
}

func summary(args []string, out io.Writer) error {
	var opts summaryOptions
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.block, "block", "inception", "block to build: pointwise, conv3x3, inception, se, cbam")
	fs.IntVar(&opts.in, "in", 32, "input channels")
	fs.IntVar(&opts.out, "out", 64, "output channels (pointwise, conv3x3, inception)")
	fs.IntVar(&opts.batch, "batch", 1, "batch size")
	fs.IntVar(&opts.size, "size", 16, "input height and width")
	fs.IntVar(&opts.reduction, "reduction", 16, "SE channel reduction")
	fs.IntVar(&opts.ratio, "ratio", 8, "CBAM channel attention ratio")
	fs.Uint64Var(&opts.seed, "seed", 1, "random seed for the input batch")
	fs.StringVar(&opts.backend, "backend", "cpu", "compute backend: cpu or webgpu")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.batch <= 0 || opts.size <= 0 {
		return errors.New("batch and size must be positive")
	}

	switch opts.backend {
	case "cpu":
		return summarize(cpu.New(), opts, out)
	case "webgpu":
		gpu, err := webgpu.New()
		if err != nil {
			return err
		}
		defer gpu.Release()
		return summarize(gpu, opts, out)
	default:
		return fmt.Errorf("unknown backend %q", opts.backend)
	}
}

func summarize[B tensor.Backend](backend B, opts summaryOptions, out io.Writer) (err error) {
	// Blocks panic on invalid configurations; report those as errors.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	block, err := buildBlock(backend, opts)
	if err != nil {
		return err
	}
	nn.Eval(block)

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	x := tensor.RandnFrom[float32](tensor.Shape{opts.batch, opts.in, opts.size, opts.size}, rng, backend)
	y := block.Forward(x)

	fmt.Fprintf(out, "Block:      %v\n", block)
	fmt.Fprintf(out, "Backend:    %s\n", backend.Name())
	fmt.Fprintf(out, "Input:      %v\n", x.Shape())
	fmt.Fprintf(out, "Output:     %v\n", y.Shape())
	fmt.Fprintf(out, "Parameters: %d\n", nn.CountParameters(block))
	for _, p := range block.Parameters() {
		fmt.Fprintf(out, "  %-20s %v\n", p.Name(), p.Tensor().Shape())
	}
	return nil
}

func buildBlock[B tensor.Backend](backend B, opts summaryOptions) (nn.Module[B], error) {
	switch opts.block {
	case "pointwise":
		return blocks.PointWiseBlock(opts.in, opts.out, backend), nil
	case "conv3x3":
		return blocks.Conv3x3(opts.in, opts.out, 1, backend), nil
	case "inception":
		cfg := blocks.DefaultInceptionConfig(opts.in, opts.out)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return blocks.NewInceptionBlock(cfg, backend), nil
	case "se":
		cfg := blocks.SEConfig{Channels: opts.in, Reduction: opts.reduction}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return blocks.NewSELayer(cfg, backend), nil
	case "cbam":
		cfg := blocks.DefaultCBAMConfig(opts.in)
		cfg.Ratio = opts.ratio
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return blocks.NewCBAMBlockWithConfig(cfg, backend), nil
	default:
		return nil, fmt.Errorf("unknown block %q", opts.block)
	}
}
