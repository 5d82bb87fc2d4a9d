/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is rmatch, a command-line tool for regular
// expressions over JSON symbols.
//
// Examples:
//
//	rmatch match -e '"coin"+ "push"' '["coin","push"]'
//	rmatch check specs/*.yaml
//	rmatch dot -f specs/turnstile.yaml | dot -Tpng > turnstile.png
//	rmatch lib put turnstile specs/turnstile.yaml
//	rmatch serve --ws :8080
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rmatch:", err)
		os.Exit(1)
	}
}
