/*
 * Copyright 2009 Volker Oth (0xdeadbeef)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * NOTE: Converted to C# and modified by Nikse.dk@gmail.com
 * NOTE: Converted from C# to Go by github.com/RistRyder
 */

package bluraysup

import "github.com/ristryder/pgssup/common"

// MillisecondsToTime splits milliseconds into [hours, minutes, seconds, milliseconds]
func MillisecondsToTime(ms int64) [4]int64 {
	timeCode := common.TimeCode{TotalMilliseconds: ms}

	return [4]int64{timeCode.Hours(), timeCode.Minutes(), timeCode.Seconds(), timeCode.Milliseconds()}
}

// PtsToMilliseconds converts 90kHz ticks to milliseconds, rounding down
func PtsToMilliseconds(pts int64) int64 {
	return pts / ticksPerMillisecond
}

// PtsToTimeString converts time in 90kHz ticks to a string in "hh:mm:ss.ms" format
func PtsToTimeString(pts int64) string {
	return common.TimeCode{TotalMilliseconds: PtsToMilliseconds(pts)}.String()
}
