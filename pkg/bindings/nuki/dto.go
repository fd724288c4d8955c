/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package nuki

import "time"

// SmartLockDevice is one entry of GET /smartlock.
type SmartLockDevice struct {
	SmartLockID     int    `json:"smartlockId"`
	AccountID       int    `json:"accountId"`
	Type            int    `json:"type"`
	LMType          int    `json:"lmType"`
	AuthID          int    `json:"authId"`
	Name            string `json:"name"`
	Favorite        bool   `json:"favorite"`
	FirmwareVersion int    `json:"firmwareVersion"`
	HardwareVersion int    `json:"hardwareVersion"`
	Opener          bool   `json:"opener"`
	Box             bool   `json:"box"`
	SmartDoor       bool   `json:"smartDoor"`
	Keyturner       bool   `json:"keyturner"`
	Smartlock3      bool   `json:"smartlock3"`
}

// Account is the response of GET /account.
type Account struct {
	AccountID       int       `json:"accountId"`
	Type            int       `json:"type"`
	Email           string    `json:"email"`
	EmailVerified   bool      `json:"emailVerified"`
	Name            string    `json:"name"`
	MasterAccountID int       `json:"masterAccountId"`
	Rights          int       `json:"rights"`
	Language        string    `json:"language"`
	CreationDate    time.Time `json:"creationDate"`
	UpdateDate      time.Time `json:"updateDate"`
}

// ListResponse carries the outcome of a list call. Success is true only
// when the list was decoded.
type ListResponse[T any] struct {
	Status  int
	Message string
	Success bool
	Items   []T
}
