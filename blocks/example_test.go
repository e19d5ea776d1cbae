// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package blocks_test

import (
	"fmt"

	"github.com/born-ml/vision/autodiff"
	"github.com/born-ml/vision/backend/cpu"
	"github.com/born-ml/vision/blocks"
	"github.com/born-ml/vision/nn"
	"github.com/born-ml/vision/tensor"
)

func ExampleNewInceptionBlock() {
	backend := cpu.New()
	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(16, 32), backend)

	x := tensor.Randn[float32](tensor.Shape{2, 16, 8, 8}, backend)
	y := block.Forward(x)

	fmt.Println(y.Shape())
	fmt.Println(nn.CountParameters[*cpu.Backend](block))
	// Output:
	// [2 32 8 8]
	// 2352
}

func ExampleNewCBAMBlock() {
	backend := autodiff.New(cpu.New())
	cbam := blocks.NewCBAMBlock(32, backend)

	x := tensor.Randn[float32](tensor.Shape{1, 32, 6, 6}, backend)
	fmt.Println(cbam.Forward(x).Shape())
	// Output:
	// [1 32 6 6]
}

func ExampleSEConfig_Validate() {
	err := blocks.DefaultSEConfig(24).Validate()
	fmt.Println(err)
	// Output:
	// blocks: channel count is not divisible: se channels 24 by reduction 16
}
