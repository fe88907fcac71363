// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package progress

// IsExperimentDone tells whether nothing is pending.
func (p *Progress) IsExperimentDone() bool {
	return len(p.doc.Pending) == 0
}

// IsDeviceDone tells whether no run of the device is pending.
func (p *Progress) IsDeviceDone(device string) bool {
	for _, run := range p.doc.Pending {
		if run.Device == device {
			return false
		}
	}
	return true
}

// IsSubjectDone tells whether no run of the subject on the device (in the browser) is pending.
func (p *Progress) IsSubjectDone(device, subject, browser string) bool {
	scope := Run{Device: device, Subject: subject, Browser: browser}
	for _, run := range p.doc.Pending {
		if run.sameSubject(scope) {
			return false
		}
	}
	return true
}

// IsSubjectFirstAttempt tells whether no attempt of the run's subject on its device was done yet.
func (p *Progress) IsSubjectFirstAttempt(run Run) bool {
	for _, done := range p.doc.Done {
		if done.sameSubject(run) {
			return false
		}
	}
	return true
}

// IsDeviceFirstRun tells whether no run of the device was done yet.
func (p *Progress) IsDeviceFirstRun(run Run) bool {
	for _, done := range p.doc.Done {
		if done.Device == run.Device {
			return false
		}
	}
	return true
}

// IsSubjectLastAttempt tells whether the run is the only pending attempt of its subject on its device.
// Once it is committed, IsSubjectDone becomes true.
func (p *Progress) IsSubjectLastAttempt(run Run) bool {
	for _, pending := range p.doc.Pending {
		if pending.ID != run.ID && pending.sameSubject(run) {
			return false
		}
	}
	return true
}

// IsDeviceLastRun tells whether the run is the only pending run of its device.
func (p *Progress) IsDeviceLastRun(run Run) bool {
	for _, pending := range p.doc.Pending {
		if pending.ID != run.ID && pending.Device == run.Device {
			return false
		}
	}
	return true
}
