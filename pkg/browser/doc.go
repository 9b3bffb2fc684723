// Package browser provides the page-level building blocks of the automation
// engine: a narrow driver abstraction over Playwright, the declarative action
// executor, and the detection policy that spots CAPTCHA and login walls.
//
// The executor runs actions strictly in order against a single page and
// invokes the detector after every action. Bounded-wait expiries are absorbed
// (logged and skipped, or retried once, per ExecutorOptions); a positive
// detection halts the sequence immediately and surfaces the unexecuted
// remainder so the engine can checkpoint it.
//
// Production code drives Playwright through PlaywrightDriver; tests implement
// the Driver, Session, Page and Element interfaces with fakes.
package browser
