package source

import "math"

// DisplayOptions describes the available display area and how an image
// should be fitted into it. It is consumed read-only; ScaleToFitDisplay
// works on a local copy.
type DisplayOptions struct {
	// Available space in pixels.
	Width  int
	Height int

	// Allow making the image larger than the original.
	Upscale bool
	// Restrict upscaling to integer multiples of the original size to
	// avoid blurry non-integer resampling.
	UpscaleInteger bool

	// Fill the respective axis completely, overflowing the other axis
	// if needed.
	FillWidth  bool
	FillHeight bool

	// Correction for non-square terminal character cells. 1.0 means
	// square pixels.
	WidthStretch float32

	// Pixel footprint of one character cell in the chosen graphics
	// mode. Targets are floored to multiples of these when both are in
	// [1, 2] (block modes).
	CellXPx int
	CellYPx int
}

// ScaleResult is the outcome of a fit computation.
type ScaleResult struct {
	Width  int
	Height int
	// NeedsScale is false only if the target is exactly the original
	// size and no cell-geometry pre-doubling applies.
	NeedsScale bool
}

const maxAcceptFactor = 5.0

// ScaleToFitDisplay computes the pixel size an image of imgW x imgH has
// to be scaled to so that it fits the display described by opts. With
// fitInRotated the fit is computed against axis-swapped display bounds,
// for content that is rotated a quarter turn before being shown.
func ScaleToFitDisplay(imgW, imgH int, orig DisplayOptions, fitInRotated bool) ScaleResult {
	opts := orig
	if fitInRotated {
		opts.Width, opts.Height = orig.Height, orig.Width
		opts.FillWidth, opts.FillHeight = orig.FillHeight, orig.FillWidth
		opts.WidthStretch = 1.0 / orig.WidthStretch
	}

	// Clamp stretch to reasonable values.
	stretch := opts.WidthStretch
	if stretch > maxAcceptFactor {
		stretch = maxAcceptFactor
	}
	if stretch < 1/maxAcceptFactor {
		stretch = 1 / maxAcceptFactor
	}

	if stretch > 1.0 {
		opts.Width = int(float32(opts.Width) / stretch) // pretend to have less space
	} else {
		opts.Height = int(float32(opts.Height) * stretch)
	}

	widthFraction := float32(opts.Width) / float32(imgW)
	heightFraction := float32(opts.Height) / float32(imgH)

	// If the image < screen, only upscale if requested.
	if !opts.Upscale && (opts.FillHeight || widthFraction > 1.0) &&
		(opts.FillWidth || heightFraction > 1.0) {
		if opts.CellXPx == 2 {
			// Quarter blocks have an inherent 2:1 pixel aspect, so
			// even an unscaled image needs its width doubled.
			return ScaleResult{Width: 2 * imgW, Height: imgH, NeedsScale: true}
		}
		return ScaleResult{Width: imgW, Height: imgH}
	}

	targetW := opts.Width
	targetH := opts.Height

	switch {
	case opts.FillWidth && opts.FillHeight:
		// Fill as much as we can get in available space. Largest
		// scale fraction determines that, for diagonal scroll modes.
		larger := widthFraction
		if heightFraction > larger {
			larger = heightFraction
		}
		targetW = roundf(larger * float32(imgW))
		targetH = roundf(larger * float32(imgH))
	case opts.FillHeight:
		// Height constraint stays, width may overflow the screen.
		targetW = roundf(heightFraction * float32(imgW))
	case opts.FillWidth:
		// Dito, horizontal.
		targetH = roundf(widthFraction * float32(imgH))
	default:
		// Typical situation: whatever limits first.
		smaller := widthFraction
		if heightFraction < smaller {
			smaller = heightFraction
		}
		targetW = roundf(smaller * float32(imgW))
		targetH = roundf(smaller * float32(imgH))
	}

	// Undo the stretch pre-adjustment so the target reflects true
	// display pixel geometry.
	if stretch > 1.0 {
		targetW = int(float32(targetW) * stretch)
	} else {
		targetH = int(float32(targetH) / stretch)
	}

	// Floor to full character cells, but only in the block modes.
	if opts.CellXPx > 0 && opts.CellXPx <= 2 && opts.CellYPx > 0 && opts.CellYPx <= 2 {
		targetW = targetW / opts.CellXPx * opts.CellXPx
		targetH = targetH / opts.CellYPx * opts.CellYPx
	}

	// Don't scale down to nothing.
	if targetW <= 0 {
		targetW = 1
	}
	if targetH <= 0 {
		targetH = 1
	}

	if opts.UpscaleInteger && targetW > imgW && targetH > imgH {
		// Correct for the aspect ratio mismatch of quarter rendering.
		aspectCorrect := float32(1)
		if opts.CellXPx == 2 {
			aspectCorrect = 2
		}
		wf := float32(targetW) / aspectCorrect / float32(imgW)
		hf := float32(targetH) / float32(imgH)
		smallerFactor := wf
		if hf < smallerFactor {
			smallerFactor = hf
		}
		if smallerFactor > 1.0 {
			factor := float32(math.Floor(float64(smallerFactor)))
			targetW = int(aspectCorrect * factor * float32(imgW))
			targetH = int(factor * float32(imgH))
		}
	}

	return ScaleResult{
		Width:      targetW,
		Height:     targetH,
		NeedsScale: targetW != imgW || targetH != imgH,
	}
}

// roundf rounds to nearest, ties away from zero, like C roundf.
func roundf(f float32) int {
	return int(math.Round(float64(f)))
}
