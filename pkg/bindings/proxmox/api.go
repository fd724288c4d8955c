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

package proxmox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/metrics"
)

//go:generate mockgen -destination=mock_proxmox.go -package=proxmox github.com/carverauto/bindings/pkg/bindings/proxmox API

// API is the subset of the Proxmox VE REST API the binding uses.
type API interface {
	GetVersion(ctx context.Context) (*Version, error)
	GetNodes(ctx context.Context) ([]Node, error)
	RebootShutdownNode(ctx context.Context, node string, command StatusCommand) error
	WakeOnLAN(ctx context.Context, node string) error
	GetVMs(ctx context.Context, node string) ([]VM, error)
	StartVM(ctx context.Context, node string, vmid int) error
	ShutdownVM(ctx context.Context, node string, vmid int) error
	GetLXCs(ctx context.Context, node string) ([]LXC, error)
	StartLXC(ctx context.Context, node string, vmid int) error
	ShutdownLXC(ctx context.Context, node string, vmid int) error
}

// Client talks to one Proxmox VE host.
type Client struct {
	helper *requestHelper
	auth   authorizer
	logger logger.Logger
}

var _ API = (*Client)(nil)

// ClientOptions configures NewClient.
type ClientOptions struct {
	HTTPClient *http.Client
	Metrics    *metrics.Collector
	Logger     logger.Logger
}

// NewClient returns a client for cfg. The ticket provider shares the HTTP client.
func NewClient(cfg *HostConfig, opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.New(httpclient.Options{Name: BindingID, Metrics: opts.Metrics})
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	tickets := NewTicketProvider(cfg, hc, log)
	helper := newRequestHelper(cfg.BaseURL, hc)
	helper.onUnauthorized = tickets.Invalidate

	return &Client{
		helper: helper,
		auth:   tickets,
		logger: log,
	}
}

type nodeCommandBody struct {
	Node    string        `json:"node"`
	Command StatusCommand `json:"command"`
}

type guestBody struct {
	Node string `json:"node"`
	VMID int    `json:"vmid"`
}

func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.get(ctx, "/version", &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func (c *Client) GetNodes(ctx context.Context) ([]Node, error) {
	var nodes []Node
	if err := c.get(ctx, "/nodes", &nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

func (c *Client) RebootShutdownNode(ctx context.Context, node string, command StatusCommand) error {
	return c.post(ctx, nodePath(node, "status"), nodeCommandBody{Node: node, Command: command})
}

func (c *Client) WakeOnLAN(ctx context.Context, node string) error {
	return c.post(ctx, nodePath(node, "wakeonlan"), nil)
}

func (c *Client) GetVMs(ctx context.Context, node string) ([]VM, error) {
	var vms []VM
	if err := c.get(ctx, nodePath(node, "qemu"), &vms); err != nil {
		return nil, err
	}

	for i := range vms {
		vms[i].NodeName = node
	}

	return vms, nil
}

func (c *Client) StartVM(ctx context.Context, node string, vmid int) error {
	return c.post(ctx, guestPath(node, "qemu", vmid, "start"), guestBody{Node: node, VMID: vmid})
}

func (c *Client) ShutdownVM(ctx context.Context, node string, vmid int) error {
	return c.post(ctx, guestPath(node, "qemu", vmid, "shutdown"), guestBody{Node: node, VMID: vmid})
}

func (c *Client) GetLXCs(ctx context.Context, node string) ([]LXC, error) {
	var lxcs []LXC
	if err := c.get(ctx, nodePath(node, "lxc"), &lxcs); err != nil {
		return nil, err
	}

	for i := range lxcs {
		lxcs[i].NodeName = node
	}

	return lxcs, nil
}

func (c *Client) StartLXC(ctx context.Context, node string, vmid int) error {
	return c.post(ctx, guestPath(node, "lxc", vmid, "start"), guestBody{Node: node, VMID: vmid})
}

func (c *Client) ShutdownLXC(ctx context.Context, node string, vmid int) error {
	return c.post(ctx, guestPath(node, "lxc", vmid, "shutdown"), guestBody{Node: node, VMID: vmid})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := c.helper.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if err := c.auth.Authorize(ctx, req); err != nil {
		return err
	}

	return c.helper.send(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	req, err := c.helper.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	if err := c.auth.Authorize(ctx, req); err != nil {
		return err
	}

	c.logger.Debug().Str("path", path).Msg("Sending Proxmox command")

	return c.helper.send(req, nil)
}

func nodePath(node, resource string) string {
	return fmt.Sprintf("/nodes/%s/%s", url.PathEscape(node), resource)
}

func guestPath(node, kind string, vmid int, action string) string {
	return fmt.Sprintf("/nodes/%s/%s/%d/status/%s", url.PathEscape(node), kind, vmid, action)
}
