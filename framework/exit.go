package framework

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/common/errors"
)

// Overridable for tests; exiting the test binary mid-run helps nobody.
var exitFunc = os.Exit

// HardExit terminates the process with the given code. Used for states the
// scheduler cannot reason itself out of: a half-processed offer batch, a
// lost driver, a failed registration write.
func HardExit(code errors.ExitCode) {
	log.Errorf("Exiting with code %d", int(code))
	exitFunc(int(code))
}

// HardExitError terminates the process with the code carried by err.
func HardExitError(err *errors.ExitCodeError) {
	log.Error(err)
	exitFunc(int(err.GetExitCode()))
}
