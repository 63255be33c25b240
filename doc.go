// Package figtest compares freshly rendered figures against stored
// baseline images.
//
// A chart library tests its rendering by drawing a figure and asserting
// that the pixels match an accepted reference within a tolerance:
//
//	func TestScatter(t *testing.T) {
//		figtest.Run(t, func(t *testing.T) {
//			p := plots.NewScatter(data)
//			figtest.AssertImageEqual(t, p, "scatter")
//		})
//	}
//
// Baselines live next to the test source under
// baseline_images/<test-file-stem>/<name>.png. Each comparison renders
// the plot into result_images/<test-file-stem>/<name>.png, copies the
// baseline alongside it as <name>-expected.png for manual diffing, and
// fails with the root-mean-square pixel difference when the images
// disagree by more than the tolerance.
//
// Every comparison is also recorded in an in-process run summary.
// Packages that want figtest report and figtest triage to see their
// runs use Main as their TestMain, which flushes the summary under the
// result directory when the test binary exits:
//
//	func TestMain(m *testing.M) {
//		figtest.Main(m)
//	}
//
// Pixel comparisons are only meaningful when rendering is deterministic.
// Run (or Setup/Teardown directly) pins the process to the offscreen
// "image" backend, resets the rendering configuration, fixes text
// hinting and antialiasing, clears the font caches, and verifies no
// figures leaked from a previous test. These are process-global
// mutations; comparison tests must run sequentially.
package figtest
