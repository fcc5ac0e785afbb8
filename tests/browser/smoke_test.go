package browser_test

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"

	clientPackStore "stayfit/internal/adapters/storage/clientpack"
	domainClientPack "stayfit/internal/domain/clientpack"
)

// TestSmoke_PublicPages verifies the marketing pages load without errors in both languages.
func TestSmoke_PublicPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/coaches", "/pricing", "/login", "/?lang=ar"} {
		t.Run(path, func(t *testing.T) {
			page := app.newPage(t)
			var consoleErrors []string
			page.On("console", func(msg playwright.ConsoleMessage) {
				if msg.Type() == "error" {
					consoleErrors = append(consoleErrors, msg.Text())
				}
			})
			resp, err := page.Goto(app.BaseURL + path)
			if err != nil {
				t.Fatalf("failed to navigate to %s: %v", path, err)
			}
			if resp.Status() != 200 {
				t.Errorf("%s: got status %d, want 200", path, resp.Status())
			}
			if len(consoleErrors) > 0 {
				t.Errorf("console errors on %s: %v", path, consoleErrors)
			}
		})
	}
}

// TestSmoke_RoleDashboards signs in as each role and checks the landing page.
func TestSmoke_RoleDashboards(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		email    string
		wantPath string
	}{
		{adminEmail, "/dashboard/admin"},
		{"new.client@stayfit.test", "/dashboard/client"},
	}
	for _, tt := range tests {
		t.Run(tt.wantPath, func(t *testing.T) {
			page := app.newPage(t)
			app.login(t, page, tt.email, tt.wantPath)
			if err := page.Locator("h1").First().WaitFor(); err != nil {
				t.Errorf("dashboard heading missing: %v", err)
			}
		})
	}
}

// TestSmoke_BuyPack walks a client through pricing, checkout and the gateway callback.
func TestSmoke_BuyPack(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "buyer@stayfit.test", "/dashboard/client")

	if _, err := page.Goto(app.BaseURL + "/pricing"); err != nil {
		t.Fatalf("failed to navigate to pricing: %v", err)
	}
	if err := page.Locator("form.offer button[type=submit]").First().Click(); err != nil {
		t.Fatalf("failed to click buy: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/checkout?**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("buy did not open checkout: %v", err)
	}

	if err := page.Locator("form button[type=submit]").Last().Click(); err != nil {
		t.Fatalf("failed to click pay: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/payment/callback?**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("checkout did not reach the callback: %v", err)
	}
	if err := page.Locator("p.ok").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("payment page does not show completion: %v", err)
	}

	packs, err := app.Stores.ClientPackStore.List(context.Background(), clientPackStore.ListFilter{State: domainClientPack.StateCompleted})
	if err != nil {
		t.Fatalf("list client packs: %v", err)
	}
	if len(packs) != 1 {
		t.Errorf("completed purchases = %d, want 1", len(packs))
	}
}
