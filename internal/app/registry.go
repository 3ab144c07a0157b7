package app

import (
	"fmt"

	"github.com/okian/facecam/internal/domain/model"
)

// FaceOption is one entry of the delete selector.
type FaceOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
	// Confirm is the localized prompt shown before deleting this face.
	Confirm string `json:"confirm,omitempty"`
}

// RegistryView is the registry as presented for selection and deletion.
type RegistryView struct {
	Options  []FaceOption `json:"options"`
	Selected string       `json:"selected,omitempty"`
	Count    int          `json:"count"`
	Error    string       `json:"error,omitempty"`
}

func newRegistryView(faces []model.KnownFace, count int, loc Locale, selected string) RegistryView {
	v := RegistryView{
		Options: make([]FaceOption, 0, len(faces)+2),
		Count:   count,
	}
	v.Options = append(v.Options, FaceOption{Label: loc.SelectFace})
	for _, f := range faces {
		v.Options = append(v.Options, FaceOption{
			Value:   f.Filename,
			Label:   f.Name,
			Confirm: fmt.Sprintf(loc.DeleteConfirm, f.Name),
		})
		if f.Filename == selected {
			v.Selected = selected
		}
	}
	if len(faces) == 0 {
		v.Options = append(v.Options, FaceOption{Label: loc.NoFacesRegistered, Disabled: true})
	}
	return v
}

func errorRegistryView(loc Locale, err error) RegistryView {
	return RegistryView{
		Options: []FaceOption{{Label: loc.ErrorLoadingFaces, Disabled: true}},
		Error:   err.Error(),
	}
}

// option returns the enabled option with the given filename.
func (v RegistryView) option(filename string) (FaceOption, bool) {
	if filename == "" {
		return FaceOption{}, false
	}
	for _, o := range v.Options {
		if o.Value == filename && !o.Disabled {
			return o, true
		}
	}
	return FaceOption{}, false
}

// DeleteEnabled reports whether the current selection names a registered face.
func (v RegistryView) DeleteEnabled() bool {
	_, ok := v.option(v.Selected)
	return ok
}
