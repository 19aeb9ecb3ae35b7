// Package analysis provides post-run analysis of recorded histories.
//
//   - [PowerSpectrum], [DominantFrequency]: spectra of sampled series
//   - [ParticlePortrait]: position/velocity phase plot of the particle
//   - [Crossings]: upward threshold crossings of a series
//
// # Example
//
//	probe := st.Energy.Column(50, st.Next())
//	f, _ := analysis.DominantFrequency(probe, st.Time.Dt)
package analysis
