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

package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bindings/pkg/logger"
)

var errStartFailed = errors.New("start failed")

type fakeService struct {
	startErr error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeService) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.started.Store(true)

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestRunServiceStopsOnContextCancel(t *testing.T) {
	svc := &fakeService{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- RunService(ctx, &ServiceOptions{ServiceName: "test", Service: svc, Logger: logger.NewTestLogger()})
	}()

	require.Eventually(t, svc.started.Load, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunService did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServiceStartFailure(t *testing.T) {
	svc := &fakeService{startErr: errStartFailed}

	err := RunService(context.Background(), &ServiceOptions{ServiceName: "test", Service: svc})
	require.ErrorIs(t, err, errStartFailed)
	assert.False(t, svc.stopped.Load())
}

func TestRunServiceRequiresService(t *testing.T) {
	require.ErrorIs(t, RunService(context.Background(), &ServiceOptions{}), errServiceRequired)
}

func TestCreateComponentLogger(t *testing.T) {
	l, err := CreateComponentLogger("proxmox", &logger.Config{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = CreateComponentLogger("proxmox", &logger.Config{Level: "nope"})
	require.Error(t, err)
}
