// Interactive viewer: original image, edge map and a threshold slider
package gui

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"composite-filter/internal/composite"
	"composite-filter/internal/core"
	"composite-filter/internal/metrics"
)

// Viewer shows the composite filter's output next to its input and
// re-executes the filter whenever the threshold changes.
type Viewer struct {
	window fyne.Window
	logger *logrus.Logger

	mu     sync.Mutex
	closed bool
	input  *core.Image
	filter *composite.CompositeFilter[float32]
	eval   *metrics.Evaluator

	originalImage *canvas.Image
	previewImage  *canvas.Image
	thresholdText *widget.Label
	statusLabel   *widget.Label
}

// NewViewer creates the viewer window. input must be a float32 single
// channel image and stays owned by the caller.
func NewViewer(app fyne.App, input gocv.Mat, threshold float32, logger *logrus.Logger) *Viewer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	v := &Viewer{
		window: app.NewWindow("Composite Edge Filter"),
		logger: logger,
		input:  core.NewImageView(input),
		filter: composite.New[float32](
			composite.WithLogger(logger),
			composite.WithOutputPixelType(core.PixelUInt8),
		),
		eval: metrics.NewEvaluator(),
	}
	v.filter.SetInput(v.input)
	v.filter.SetThreshold(threshold)

	v.window.Resize(fyne.NewSize(1200, 700))
	v.window.SetContent(v.buildUI(input, threshold))
	v.window.SetOnClosed(v.close)

	return v
}

func (v *Viewer) buildUI(input gocv.Mat, threshold float32) fyne.CanvasObject {
	v.originalImage = canvas.NewImageFromImage(toDisplayImage(input, v.logger))
	v.originalImage.FillMode = canvas.ImageFillContain
	v.originalImage.ScaleMode = canvas.ImageScalePixels

	v.previewImage = canvas.NewImageFromImage(placeholderImage())
	v.previewImage.FillMode = canvas.ImageFillContain
	v.previewImage.ScaleMode = canvas.ImageScalePixels

	originalCard := widget.NewCard("Original", "", v.originalImage)
	previewCard := widget.NewCard("Edges", "", v.previewImage)
	split := container.NewHSplit(originalCard, previewCard)
	split.SetOffset(0.5)

	minVal, maxVal, _, _ := gocv.MinMaxLoc(input)
	sliderMax := float64(maxVal - minVal)
	if sliderMax <= 0 {
		sliderMax = 1
	}

	v.thresholdText = widget.NewLabel(fmt.Sprintf("Threshold: %.2f", threshold))
	v.statusLabel = widget.NewLabel("")

	slider := widget.NewSlider(0, sliderMax)
	slider.Step = sliderMax / 200
	slider.SetValue(float64(threshold))
	slider.OnChangeEnded = func(value float64) {
		v.thresholdText.SetText(fmt.Sprintf("Threshold: %.2f", value))
		go v.Refresh(float32(value))
	}

	controls := container.NewBorder(nil, nil, v.thresholdText, nil, slider)
	return container.NewBorder(nil, container.NewVBox(controls, v.statusLabel), nil, nil, split)
}

// Refresh executes the filter with a new threshold and updates the preview
func (v *Viewer) Refresh(threshold float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		v.logger.Debug("Viewer closed, skipping refresh")
		return
	}

	v.filter.SetThreshold(threshold)
	if err := v.filter.Update(); err != nil {
		v.logger.WithError(err).Error("Composite filter failed")
		fyne.Do(func() {
			v.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		})
		return
	}

	output := v.filter.Output().Mat()
	preview := toDisplayImage(output, v.logger)
	results := v.eval.CalculateAll(v.input.Mat(), output)

	fyne.Do(func() {
		v.previewImage.Image = preview
		v.previewImage.Refresh()
		v.statusLabel.SetText(fmt.Sprintf("Edge density: %.3f  Suppressed: %.3f",
			results["edge_density"], results["suppressed_fraction"]))
	})
}

// close waits for a running refresh, then releases the filter
func (v *Viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	if err := v.filter.Close(); err != nil {
		v.logger.WithError(err).Warn("Failed to release composite filter")
	}
}

// ShowAndRun runs the first execution and blocks on the fyne event loop
func (v *Viewer) ShowAndRun() {
	go v.Refresh(v.filter.Threshold())
	v.window.ShowAndRun()
}

func toDisplayImage(mat gocv.Mat, logger *logrus.Logger) image.Image {
	display := mat
	if mat.Type() != gocv.MatTypeCV8U {
		wide := gocv.NewMat()
		defer wide.Close()
		mat.ConvertTo(&wide, gocv.MatTypeCV64F)
		gocv.Normalize(wide, &wide, 0, 255, gocv.NormMinMax)

		display = gocv.NewMat()
		defer display.Close()
		wide.ConvertTo(&display, gocv.MatTypeCV8U)
	}

	img, err := display.ToImage()
	if err != nil {
		logger.WithError(err).Warn("Cannot convert image for display")
		return placeholderImage()
	}
	return img
}

func placeholderImage() image.Image {
	placeholder := image.NewRGBA(image.Rect(0, 0, 400, 300))
	gray := color.RGBA{245, 245, 245, 255}

	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			placeholder.Set(x, y, gray)
		}
	}

	return placeholder
}
