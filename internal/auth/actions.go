package auth

import (
	"context"

	"geonotes/internal/dispatch"
)

// RegisterActions installs the login and registration handlers.
func (m *Manager) RegisterActions(table *dispatch.Table) {
	if table == nil {
		return
	}
	table.Register(dispatch.ActionLogin, func(ctx context.Context, ev dispatch.Event) error {
		return m.Login(ctx, ev.Arg("username"), ev.Arg("password"))
	})
	table.Register(dispatch.ActionLogout, func(ctx context.Context, ev dispatch.Event) error {
		return m.Logout(ctx)
	})
	table.Register(dispatch.ActionShowRegister, func(ctx context.Context, ev dispatch.Event) error {
		m.ShowRegister()
		return nil
	})
	table.Register(dispatch.ActionShowLogin, func(ctx context.Context, ev dispatch.Event) error {
		m.ShowLogin()
		return nil
	})
	table.Register(dispatch.ActionSendVerification, func(ctx context.Context, ev dispatch.Event) error {
		return m.SendVerification(ctx, ev.Arg("username"), ev.Arg("password"), ev.Arg("email"))
	})
	table.Register(dispatch.ActionVerify, func(ctx context.Context, ev dispatch.Event) error {
		return m.VerifyAndRegister(ctx, ev.Arg("code"))
	})
}
