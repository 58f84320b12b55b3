// Copyright 2024 opshive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppSession_Has(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		perms []Permission
		perm  Permission
		want  bool
	}{
		{
			name:  "拥有权限",
			perms: []Permission{PermissionReadBalance, PermissionConsumeCredits},
			perm:  PermissionConsumeCredits,
			want:  true,
		},
		{
			name:  "没有权限",
			perms: []Permission{PermissionReadBalance},
			perm:  PermissionConsumeCredits,
			want:  false,
		},
		{
			name: "空权限集",
			perm: PermissionReadBalance,
			want: false,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sess := AppSession{
				AppId:       "flowrunner",
				Uid:         123,
				Permissions: tc.perms,
			}
			assert.Equal(t, tc.want, sess.Has(tc.perm))
		})
	}
}
