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

package experiment

import (
	"context"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Subject drives the application under test on a device.
type Subject interface {
	// Install prepares subject before its first attempt on the device.
	Install(ctx context.Context, dev device.Device) error
	// Uninstall reverts Install after the last attempt.
	Uninstall(ctx context.Context, dev device.Device) error
	ClearCache(ctx context.Context, dev device.Device) error
	Launch(ctx context.Context, dev device.Device) error
	Close(ctx context.Context, dev device.Device) error
}

// nativeSubject is an application package, optionally installed from an apk.
type nativeSubject struct {
	subject config.Subject
}

// NewNativeSubject returns handler of an application package.
func NewNativeSubject(subject config.Subject) Subject {
	return nativeSubject{subject: subject}
}

func (s nativeSubject) Install(ctx context.Context, dev device.Device) error {
	if s.subject.Apk == "" {
		return nil
	}
	logrus.Debugf("Installing %q on %q", s.subject.Apk, dev.Name())
	return errors.Wrapf(dev.Install(ctx, s.subject.Apk), "cannot install %q", s.subject.Path)
}

func (s nativeSubject) Uninstall(ctx context.Context, dev device.Device) error {
	if s.subject.Apk == "" {
		return nil
	}
	logrus.Debugf("Uninstalling %q from %q", s.subject.Package, dev.Name())
	return errors.Wrapf(dev.Uninstall(ctx, s.subject.Package), "cannot uninstall %q", s.subject.Package)
}

func (s nativeSubject) ClearCache(ctx context.Context, dev device.Device) error {
	return errors.Wrapf(dev.ClearAppData(ctx, s.subject.Package), "cannot clear data of %q", s.subject.Package)
}

func (s nativeSubject) Launch(ctx context.Context, dev device.Device) error {
	return errors.Wrapf(dev.LaunchPackage(ctx, s.subject.Package), "cannot launch %q", s.subject.Package)
}

func (s nativeSubject) Close(ctx context.Context, dev device.Device) error {
	return errors.Wrapf(dev.ForceStop(ctx, s.subject.Package), "cannot stop %q", s.subject.Package)
}

// webSubject is an URL opened in a browser.
type webSubject struct {
	url     string
	browser Browser
}

// NewWebSubject returns handler opening url in the browser.
func NewWebSubject(url string, browser Browser) Subject {
	return webSubject{url: url, browser: browser}
}

func (s webSubject) Install(context.Context, device.Device) error   { return nil }
func (s webSubject) Uninstall(context.Context, device.Device) error { return nil }

func (s webSubject) ClearCache(ctx context.Context, dev device.Device) error {
	return errors.Wrapf(dev.ClearAppData(ctx, s.browser.Package), "cannot clear data of %s", s.browser.Name)
}

func (s webSubject) Launch(ctx context.Context, dev device.Device) error {
	err := dev.LaunchActivity(ctx, s.browser.Package, s.browser.Activity, s.url)
	return errors.Wrapf(err, "cannot open %q in %s", s.url, s.browser.Name)
}

func (s webSubject) Close(ctx context.Context, dev device.Device) error {
	return errors.Wrapf(dev.ForceStop(ctx, s.browser.Package), "cannot stop %s", s.browser.Name)
}
