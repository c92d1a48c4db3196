package data

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/born-ml/backprop/internal/parallel"
	"github.com/pkg/errors"
)

// IDX magic numbers for unsigned-byte image (3D) and label (1D) files.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// MNIST file names inside a data directory.
const (
	TrainImagesFile = "train-images-idx3-ubyte"
	TrainLabelsFile = "train-labels-idx1-ubyte"
	TestImagesFile  = "t10k-images-idx3-ubyte"
	TestLabelsFile  = "t10k-labels-idx1-ubyte"
)

// LoadMNIST loads MNIST from the official IDX files in dataDir.
//
// Parameters:
//   - dataDir: Directory containing the uncompressed IDX files
//   - train: If true, load the training set, else the test set
//   - limit: Maximum number of samples to load (0 = load all)
//
// Pixels are normalized to [0, 1].
func LoadMNIST(dataDir string, train bool, limit int) (*Dataset, error) {
	imageFile, labelFile := TestImagesFile, TestLabelsFile
	if train {
		imageFile, labelFile = TrainImagesFile, TrainLabelsFile
	}
	return ReadIDX(filepath.Join(dataDir, imageFile), filepath.Join(dataDir, labelFile), limit)
}

// ReadIDX reads an IDX image file and its label file into a Dataset.
func ReadIDX(imagesPath, labelsPath string, limit int) (*Dataset, error) {
	images, err := readIDXImagesFile(imagesPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load images")
	}
	labels, err := readIDXLabelsFile(labelsPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load labels")
	}
	if len(images) != len(labels) {
		return nil, errors.Errorf("image count (%d) != label count (%d)", len(images), len(labels))
	}

	n := len(images)
	if limit > 0 && n > limit {
		n = limit
	}
	features := make([][]float64, n)
	ys := make([]int, n)
	parallel.For(n, parallel.Default(), func(i int) {
		features[i] = make([]float64, len(images[i]))
		for j, px := range images[i] {
			features[i][j] = float64(px) / 255.0
		}
		ys[i] = int(labels[i])
	})
	return NewDataset(features, ys)
}

func readIDXImagesFile(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadIDXImages(f)
}

func readIDXLabelsFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadIDXLabels(f)
}

// ReadIDXImages decodes an IDX image stream.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader) ([][]byte, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if header[0] != idxImagesMagic {
		return nil, errors.Errorf("invalid magic number: got %d, want %d", header[0], idxImagesMagic)
	}

	numImages := int(header[1])
	pixels := uint64(header[2]) * uint64(header[3])
	if pixels == 0 || pixels > maxImagePixels {
		return nil, errors.Errorf("invalid image size %dx%d", header[2], header[3])
	}
	imageSize := int(pixels)
	// Header counts are untrusted; slices grow only as data arrives.
	images := make([][]byte, 0, min(numImages, 4096))
	for i := 0; i < numImages; i++ {
		img, err := readFull(r, imageSize)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read image %d of %d", i, numImages)
		}
		images = append(images, img)
	}
	return images, nil
}

// ReadIDXLabels decodes an IDX label stream.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if header[0] != idxLabelsMagic {
		return nil, errors.Errorf("invalid magic number: got %d, want %d", header[0], idxLabelsMagic)
	}

	labels, err := readFull(r, int(header[1]))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %d labels", header[1])
	}
	return labels, nil
}

// Limits applied to untrusted IDX headers.
const (
	maxImagePixels = 1 << 24 // per image
	maxPrealloc    = 1 << 20 // bytes reserved before any data is read
)

// readFull reads exactly n bytes from r. The buffer grows as bytes arrive,
// so a truncated stream with a huge declared size fails early.
func readFull(r io.Reader, n int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(n, maxPrealloc))
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
