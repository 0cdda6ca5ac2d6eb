// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"gameshelf/internal/upload"
	"gameshelf/internal/validate"
)

// Messages shown next to the image inputs.
const (
	msgNotImage     = "The uploaded file must be an image."
	msgUploadFailed = "Failed to upload the image."
)

// draft is a submission being turned into an entity. Nothing in it is
// persisted until every stage has run without recording a violation.
type draft[T any] struct {
	value  *T
	form   *validate.Form
	batch  *upload.Batch
	stored []string // URLs produced by this submission
}

func newDraft[T any](value *T, batch *upload.Batch) *draft[T] {
	d := &draft[T]{value: value, batch: batch}
	if batch != nil {
		d.form = validate.NewForm(batch.Values)
	} else {
		d.form = validate.NewForm(nil)
	}
	return d
}

// stage is one step over a draft. Violations go to the draft's form and do
// not stop later stages; a returned error is an infrastructure failure and
// aborts the submission.
type stage[T any] func(ctx context.Context, d *draft[T]) error

// run executes stages in order and reports whether the draft is valid.
func run[T any](ctx context.Context, d *draft[T], stages ...stage[T]) (bool, error) {
	for _, st := range stages {
		if err := st(ctx, d); err != nil {
			return false, err
		}
	}
	return d.form.Valid(), nil
}

// imageStage checks the file staged under field and, when it is an image,
// stores it and hands the URL to set.
func imageStage[T any](media MediaStore, field string, set func(*T, string)) stage[T] {
	return func(ctx context.Context, d *draft[T]) error {
		f := d.batch.File(field)
		if f == nil {
			return nil
		}
		if !f.IsImage() {
			d.form.Add(field, msgNotImage)
			return nil
		}
		url := media.Store(ctx, f.Path)
		if url == "" {
			d.form.Add(field, msgUploadFailed)
			return nil
		}
		d.stored = append(d.stored, url)
		set(d.value, url)
		return nil
	}
}

// discardStored removes the assets uploaded for a draft that was not
// persisted.
func (d *draft[T]) discardStored(ctx context.Context, media MediaStore) {
	for _, url := range d.stored {
		media.DiscardURL(ctx, &url)
	}
	d.stored = nil
}

// replacedURL reports whether next is a new URL taking the place of a
// previously stored prev.
func replacedURL(prev, next *string) bool {
	if prev == nil || *prev == "" || next == nil {
		return false
	}
	return *prev != *next
}
