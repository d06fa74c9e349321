// Package onnx runs a hand landmark ONNX model through OpenCV DNN.
package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/handpose"
)

// Estimator is a gocv-backed handpose.Estimator.
type Estimator struct {
	net       gocv.Net
	cfg       handpose.Config
	mu        sync.Mutex // Protects inference
	inputSize image.Point
}

// Loader returns a handpose.Loader for cfg.
func Loader(cfg handpose.Config) handpose.Loader {
	return handpose.LoaderFunc(func(ctx context.Context) (handpose.Estimator, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return New(cfg)
	})
}

// New loads the model at cfg.ModelPath.
func New(cfg handpose.Config) (*Estimator, error) {
	// Check if model file exists first
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", handpose.ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: %s", handpose.ErrModelLoad, cfg.ModelPath)
	}
	if err := selectBackend(&net); err != nil {
		net.Close()
		return nil, err
	}

	return &Estimator{
		net:       net,
		cfg:       cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// backend is the part of gocv.Net that picks where inference runs.
type backend interface {
	SetPreferableBackend(gocv.NetBackendType) error
	SetPreferableTarget(gocv.NetTargetType) error
}

// selectBackend asks for the default DNN backend on the CPU. OpenCV builds
// without a usable DNN backend reject this, which is reported as
// handpose.ErrBackendMissing so the UI can say so.
func selectBackend(n backend) error {
	if err := n.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return fmt.Errorf("%w: %v", handpose.ErrBackendMissing, err)
	}
	if err := n.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return fmt.Errorf("%w: %v", handpose.ErrBackendMissing, err)
	}
	return nil
}

// EstimateHands runs one forward pass and returns at most one hand.
func (e *Estimator) EstimateHands(ctx context.Context, frame camera.Frame) ([]handpose.Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fw, fh := frame.Size()
	if fw == 0 || fh == 0 {
		return nil, handpose.ErrEmptyFrame
	}

	img, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return nil, fmt.Errorf("handpose: convert frame: %w", err)
	}
	defer img.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	blob := gocv.BlobFromImage(img, 1.0/255.0, e.inputSize, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()
	e.net.SetInput(blob, "")

	landmarks, score, err := e.forward()
	if err != nil {
		return nil, err
	}
	if score < e.cfg.ScoreThresh {
		return nil, nil
	}

	hand, err := handpose.FromTensor(landmarks, e.cfg.Stride,
		float64(e.cfg.InputWidth), float64(e.cfg.InputHeight), float64(fw), float64(fh), score)
	if err != nil {
		return nil, err
	}
	return []handpose.Hand{hand}, nil
}

// forward returns the flat landmark tensor and the hand presence score.
// Models without a named score output report a score of 1.
func (e *Estimator) forward() ([]float32, float64, error) {
	if len(e.cfg.Outputs) < 2 {
		out := e.net.Forward("")
		defer out.Close()
		data, err := out.DataPtrFloat32()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", handpose.ErrBadTensor, err)
		}
		return append([]float32(nil), data...), 1, nil
	}

	outs := e.net.ForwardLayers(e.cfg.Outputs[:2])
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()
	if len(outs) < 2 {
		return nil, 0, handpose.ErrBadTensor
	}

	data, err := outs[0].DataPtrFloat32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", handpose.ErrBadTensor, err)
	}
	scores, err := outs[1].DataPtrFloat32()
	if err != nil || len(scores) == 0 {
		return nil, 0, handpose.ErrBadTensor
	}
	return append([]float32(nil), data...), float64(scores[0]), nil
}

// Close releases the network.
func (e *Estimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
