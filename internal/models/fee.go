package models

// SelectOption is a label/value pair fed to a select control.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FeeOptions are the selectable lists of the fee calculator form.
type FeeOptions struct {
	Grados      []SelectOption `json:"grados"`
	Actividades []SelectOption `json:"actividades"`
}
