// Package regression fits a one-variable least-squares line predicting ice
// cream sales from temperature.
//
// Evaluate follows the classic workflow: load temperature_data.csv, hold out
// a seeded random 20% for testing, fit on the rest, then report MSE and R²
// on the held-out part and a prediction for a sample temperature. Fitting
// and scoring use gonum's stat package.
package regression
