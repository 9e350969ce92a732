// Copyright © 2024 Galvanized Logic Inc.

package constraint

// LameParameters converts the material parameters engineers actually tune
// (Young's modulus E, Poisson's ratio nu) to the Lame parameters the
// constitutive models below are written in terms of:
//
//	mu     = E / (2(1+nu))
//	lambda = E*nu / ((1+nu)(1-2*nu))
func LameParameters(youngsModulus, poissonRatio float64) (mu, lambda float64) {
	mu = youngsModulus / (2 * (1 + poissonRatio))
	lambda = youngsModulus * poissonRatio / ((1 + poissonRatio) * (1 - 2*poissonRatio))
	return mu, lambda
}
