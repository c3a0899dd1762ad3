// Package iteration implements the weekly repository iteration behind the
// iterate command.
//
// The service fetches the configured user's GitHub repositories, clones or
// updates each local copy, smoke-tests the repository entry script with a
// wall-clock timeout, proposes a single improvement, commits and pushes the
// result, and journals the proposals to the weekly memory file. Individual
// repository failures are reported and never abort the run.
package iteration
