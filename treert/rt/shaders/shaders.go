package shaders

import (
	_ "embed"
)

//go:embed foliage.wgsl
var FoliageWGSL string

//go:embed ornament.wgsl
var OrnamentWGSL string

//go:embed text.wgsl
var TextWGSL string
