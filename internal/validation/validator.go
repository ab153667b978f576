// Package validation checks detected formats and measured sizes against
// configured limits. Checks never return a Go error: every violated bound
// contributes one keyed entry to an aggregate result, so the caller can
// report all problems in a single pass.
package validation

import (
	"fmt"
	"strings"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// Error keys, stable across the HTTP surface.
const (
	KeyUnsupportedFormat    = "unsupported-format"
	KeyIncorrectSize        = "incorrect-size"
	KeyIncorrectDimension   = "incorrect-dimension"
	KeyIncorrectAspectRatio = "incorrect-aspect-ratio"
)

type Error struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

type Result struct {
	Errors []Error `json:"errors,omitempty"`
}

// OK reports whether no bound was violated.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(key, message string) {
	r.Errors = append(r.Errors, Error{Key: key, Message: message})
}

// Merge appends the errors of other to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
}

// Limits are the configured upload bounds. Aspect ratio is width/height.
type Limits struct {
	AllowedFormats []string
	MaxSizeBytes   int64
	MinWidth       int
	MaxWidth       int
	MinHeight      int
	MaxHeight      int
	MinAspectRatio float64
	MaxAspectRatio float64
}

type Validator struct {
	limits Limits
}

func New(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// CheckFormat fails when the format is absent or its type is not in the
// configured allow-list.
func (v *Validator) CheckFormat(format domain.ImageFormat) Result {
	var res Result

	if format.IsZero() {
		res.add(KeyUnsupportedFormat, "image format was not recognized")
		return res
	}

	for _, allowed := range v.limits.AllowedFormats {
		if strings.EqualFold(format.Type, allowed) {
			return res
		}
	}

	res.add(KeyUnsupportedFormat,
		fmt.Sprintf("format %q is not supported, allowed: %s", format.Type, strings.Join(v.limits.AllowedFormats, ", ")))
	return res
}

// CheckSize evaluates byte-size, dimension and aspect-ratio bounds
// independently; each violated bound contributes exactly one error.
func (v *Validator) CheckSize(size domain.ImageSize) Result {
	var res Result

	if size.Bytes <= 0 || size.Bytes > v.limits.MaxSizeBytes {
		res.add(KeyIncorrectSize,
			fmt.Sprintf("byte size %d is out of bounds (1..%d)", size.Bytes, v.limits.MaxSizeBytes))
	}

	if size.Width < v.limits.MinWidth || size.Width > v.limits.MaxWidth ||
		size.Height < v.limits.MinHeight || size.Height > v.limits.MaxHeight {
		res.add(KeyIncorrectDimension,
			fmt.Sprintf("dimensions %dx%d are out of bounds (%d..%d x %d..%d)",
				size.Width, size.Height,
				v.limits.MinWidth, v.limits.MaxWidth,
				v.limits.MinHeight, v.limits.MaxHeight))
	}

	if size.Height > 0 {
		ratio := float64(size.Width) / float64(size.Height)
		if ratio < v.limits.MinAspectRatio || ratio > v.limits.MaxAspectRatio {
			res.add(KeyIncorrectAspectRatio,
				fmt.Sprintf("aspect ratio %.3f is out of bounds (%.3f..%.3f)",
					ratio, v.limits.MinAspectRatio, v.limits.MaxAspectRatio))
		}
	}

	return res
}
