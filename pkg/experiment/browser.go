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
	"sort"
	"strings"

	"github.com/intelsdi-x/devlab/pkg/config"
)

// Browser is an android browser application able to open an URL.
type Browser struct {
	Name     string
	Package  string
	Activity string
}

var browsers = map[string]Browser{
	"chrome": {
		Name:     "chrome",
		Package:  "com.android.chrome",
		Activity: "com.google.android.apps.chrome.Main",
	},
	"firefox": {
		Name:     "firefox",
		Package:  "org.mozilla.firefox",
		Activity: "org.mozilla.gecko.BrowserApp",
	},
	"opera": {
		Name:     "opera",
		Package:  "com.opera.browser",
		Activity: "com.opera.Opera",
	},
}

// LookupBrowser returns browser by its name.
func LookupBrowser(name string) (Browser, error) {
	browser, ok := browsers[name]
	if !ok {
		return Browser{}, &config.ConfigurationError{Reason: "unknown browser " + name + ", available: " + strings.Join(BrowserNames(), ", ")}
	}
	return browser, nil
}

// BrowserNames returns sorted names of supported browsers.
func BrowserNames() []string {
	names := []string{}
	for name := range browsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
