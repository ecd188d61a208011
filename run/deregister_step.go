package run

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type StepStatus int

const (
	Pending StepStatus = iota
	Prepared
	Complete
)

func (s StepStatus) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Prepared:
		return "PREPARED"
	case Complete:
		return "COMPLETE"
	}
	return "UNKNOWN"
}

// DeregisterStep advertises the progress of framework deregistration, the
// single step of the framework-wide uninstall plan.
type DeregisterStep struct {
	mutex  sync.Mutex
	status StepStatus
}

func NewDeregisterStep() *DeregisterStep {
	return &DeregisterStep{status: Pending}
}

// Start moves a pending step to prepared.
func (s *DeregisterStep) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.status == Pending {
		log.Info("Setting framework deregistration state to Prepared")
		s.status = Prepared
	}
}

// SetComplete marks the step complete after the framework has been
// deregistered. At this point the uninstall plan as a whole is complete.
func (s *DeregisterStep) SetComplete() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	log.Info("Completed framework deregistration")
	s.status = Complete
}

func (s *DeregisterStep) Status() StepStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status
}

// UninstallPlan is the framework-wide uninstall plan: one phase holding one
// deregister step. Present only when the scheduler was launched in
// uninstall mode.
type UninstallPlan struct {
	Phase      string
	Deregister *DeregisterStep
}

func NewUninstallPlan() *UninstallPlan {
	return &UninstallPlan{Phase: "deregister-framework", Deregister: NewDeregisterStep()}
}
