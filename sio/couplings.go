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

package sio

import (
	"context"
)

// Couplings connect a Processor to some IO.
//
// For example, an implementation could couple a Service to an MQTT
// broker, with requests arriving on one topic and results published
// to another.
type Couplings interface {
	// Start initializes the Couplings.
	Start(context.Context) error

	// Serve presents requests to the Processor and delivers the
	// results.  Serve returns when the input ends or the context
	// is done.
	Serve(context.Context, Processor) error

	// Stop shuts down the Couplings.
	Stop(context.Context) error
}
