/*
 *   Copyright 2024 KServices <engineering@kservices.io>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package tools

import "net"

// ContainsIp returns true if the given IP is in the given network. The
// network may be a CIDR block or a plain address.
func ContainsIp(netw string, ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	if _, block, err := net.ParseCIDR(netw); err == nil {
		return block.Contains(parsed)
	}

	if single := net.ParseIP(netw); single != nil {
		return single.Equal(parsed)
	}
	return false
}
