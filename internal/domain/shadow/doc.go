// Package shadow computes the layered drop shadow painted under artwork previews.
//
// A shadow is a stack of [Layer] values. Each run of [Layers] walks a single
// direction, easing offset, blur and opacity along three cubic-bezier curves so
// the stack reads as one soft, physically plausible shadow. [ArtworkShadow]
// combines three such runs (long, short and upper) driven by a single intensity
// knob, and [CSS] turns the result into a box-shadow value for HTML renderers.
//
// Everything here is pure: the same inputs always produce the same layers.
package shadow
