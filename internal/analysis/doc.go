// Package analysis implements the multi-lens time-series engine for
// series emitted by simulated biological processes.
//
// Four independent lenses view the same sample array:
//
//   - [Analyzer.FourierLens]: FFT or Lomb-Scargle power spectrum and
//     dominant-period extraction with significance scoring
//   - [Analyzer.WaveletLens]: Morlet CWT with transient-event detection
//   - [Analyzer.LaplaceLens]: second-order system identification and
//     stability classification from the Welch PSD
//   - [Analyzer.ZTransformLens]: Butterworth lowpass denoising with a
//     measured noise-reduction percentage
//
// [Validator] gates analysis with pre-flight checks, and
// [Analyzer.Consensus] cross-checks periodicity claims across three
// estimators before trusting any single one.
//
// # Purity
//
// Every lens is a synchronous, stateless function of the input array and
// the analyzer's sampling-rate configuration. Nothing here blocks,
// caches, or mutates its input, so independent series can be analyzed
// from any number of goroutines with a shared Analyzer.
//
// # Degeneracies
//
// Pathological but legitimate inputs (perfectly periodic data, zero
// noise floors, flat spectra) never raise errors; they are absorbed
// into Degenerate flags on the result types so a batch run over many
// series does not abort on one odd record.
package analysis
