package repl

import (
	"fmt"
	"io"
	"strings"

	"pos-admin/internal/app"
	"pos-admin/internal/core"
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func printProducts(w io.Writer, result *app.ProductListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "  PRODUCTS (%d, %d low on stock)\n", len(result.Products), result.LowStock)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	if len(result.Products) == 0 {
		fmt.Fprintln(w, "  No products found.")
		fmt.Fprintln(w, strings.Repeat("=", 78))
		return
	}
	fmt.Fprintf(w, "  %-5s %-10s %-30s %14s %8s %s\n", "ID", "CODE", "NAME", "PRICE", "STOCK", "")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, p := range result.Products {
		flag := ""
		if p.LowStock() {
			flag = "LOW"
		}
		fmt.Fprintf(w, "  %-5d %-10s %-30s %14s %8s %s\n",
			p.ID, p.Code, truncate(p.Name, 30), core.FormatMoney(p.GeneralPrice), p.Stock.String(), flag)
	}
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

func printClients(w io.Writer, result *app.ClientListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintln(w, "  CLIENTS")
	fmt.Fprintln(w, strings.Repeat("=", 78))
	if len(result.Clients) == 0 {
		fmt.Fprintln(w, "  No clients found.")
		fmt.Fprintln(w, strings.Repeat("=", 78))
		return
	}
	fmt.Fprintf(w, "  %-5s %-12s %-28s %-12s %s\n", "ID", "DNI/RUC", "NAME", "PHONE", "EMAIL")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, c := range result.Clients {
		fmt.Fprintf(w, "  %-5d %-12s %-28s %-12s %s\n",
			c.ID, c.DocumentNumber, truncate(c.Name, 28), c.Phone, c.Email)
	}
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

func printQuotations(w io.Writer, result *app.QuotationListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "  QUOTATIONS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	if len(result.Quotations) == 0 {
		fmt.Fprintln(w, "  No quotations found.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}
	fmt.Fprintf(w, "  %-5s %-12s %-24s %-11s %14s  %s\n", "ID", "NUMBER", "CLIENT", "STATUS", "TOTAL", "DATE")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, q := range result.Quotations {
		date := ""
		if !q.CreatedAt.IsZero() {
			date = q.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "  %-5d %-12s %-24s %-11s %14s  %s\n",
			q.ID, q.Number, truncate(q.ClientName, 24), q.Status, core.FormatMoney(q.Total), date)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func printQuotationDetail(w io.Writer, result *app.QuotationResult) {
	q := result.Quotation
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  Quotation: %s (ID %d)\n", q.Number, q.ID)
	fmt.Fprintf(w, "  Client:    %s\n", q.ClientName)
	fmt.Fprintf(w, "  Status:    %s\n", q.Status)
	printLines(w, result.Items, result.Totals)
}

func printDraft(w io.Writer, title string, d *core.Draft) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %s\n", title)
	printLines(w, d.Items(), d.Totals())
}

func printLines(w io.Writer, items []core.LineItem, totals core.Totals) {
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-4s %-10s %-24s %8s %12s %12s\n", "ROW", "CODE", "PRODUCT", "QTY", "UNIT PRICE", "SUBTOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	if len(items) == 0 {
		fmt.Fprintln(w, "  (no rows, type 'add')")
	}
	for i, it := range items {
		name := it.ProductName
		if !it.HasProduct() {
			name = "(no product)"
		}
		fmt.Fprintf(w, "  %-4d %-10s %-24s %8s %12s %12s\n",
			i+1, it.ProductCode, truncate(name, 24),
			it.Quantity.String(), it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-40s %8s %25s\n", "TOTAL", totals.TotalQuantity.String(), core.FormatMoney(totals.TotalAmount))
	fmt.Fprintln(w, strings.Repeat("-", 72))
}

func printSuggestions(w io.Writer, row int, cands []core.Product) {
	if len(cands) == 0 {
		fmt.Fprintf(w, "  No products match for row %d.\n", row+1)
		return
	}
	fmt.Fprintf(w, "  Suggestions for row %d (use 'pick %d <n>'):\n", row+1, row+1)
	for i, p := range cands {
		fmt.Fprintf(w, "  %2d) %-10s %-30s %12s  stock %s\n",
			i+1, p.Code, truncate(p.Name, 30), core.FormatMoney(p.GeneralPrice), p.Stock.String())
	}
}

func printSuggestion(w io.Writer, res *app.CartSuggestionResult) {
	p := res.Proposal
	fmt.Fprintf(w, "\nSUMMARY:    %s\n", p.Summary)
	fmt.Fprintf(w, "REASONING:  %s\n", p.Reasoning)
	fmt.Fprintf(w, "CONFIDENCE: %.2f\n", p.Confidence)
	printLines(w, res.Items, res.Totals)
}

func printSale(w io.Writer, res *app.CheckoutResult) {
	p := res.Payload
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "  SALE REGISTERED  %s (ID %d)\n", res.Sale.Number, res.Sale.ID)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "  %-22s %25s\n", "Items", p.TotalItems.String())
	fmt.Fprintf(w, "  %-22s %25s\n", "Total", core.FormatMoney(p.Total))
	if p.Surcharge != nil {
		fmt.Fprintf(w, "  %-22s %25s\n", "Card surcharge", core.FormatMoney(*p.Surcharge))
	}
	fmt.Fprintf(w, "  %-22s %25s\n", "Total charged", core.FormatMoney(p.TotalWithFee))
	fmt.Fprintf(w, "  %-22s %25s\n", "Paid now ("+string(p.Method)+")", core.FormatMoney(p.AmountPaid))
	fmt.Fprintf(w, "  %-22s %25s\n", "Delivery", p.Delivery)
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

func printHeldCarts(w io.Writer, carts []core.HeldCart) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "  HELD CARTS")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	if len(carts) == 0 {
		fmt.Fprintln(w, "  No held carts.")
		fmt.Fprintln(w, strings.Repeat("=", 70))
		return
	}
	fmt.Fprintf(w, "  %-5s %-22s %-12s %6s %14s  %s\n", "ID", "LABEL", "BY", "ROWS", "TOTAL", "HELD AT")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, c := range carts {
		fmt.Fprintf(w, "  %-5d %-22s %-12s %6d %14s  %s\n",
			c.ID, truncate(c.Label, 22), c.CreatedBy, len(c.Items),
			core.FormatMoney(c.Totals().TotalAmount), c.CreatedAt.Format("15:04"))
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func printUsers(w io.Writer, result *app.UserListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "  USERS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  %-5s %-14s %-26s %-10s %s\n", "ID", "USERNAME", "NAME", "ROLE", "ACTIVE")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, u := range result.Users {
		fmt.Fprintf(w, "  %-5d %-14s %-26s %-10s %v\n", u.ID, u.Username, truncate(u.FullName, 26), u.Role, u.IsActive)
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printDashboard(w io.Writer, m *core.DashboardMetrics) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 56))
	fmt.Fprintln(w, "  DASHBOARD")
	fmt.Fprintln(w, strings.Repeat("=", 56))
	fmt.Fprintf(w, "  %-30s %22s\n", "Sales today", core.FormatMoney(m.SalesToday))
	fmt.Fprintf(w, "  %-30s %22d\n", "Sales count today", m.SalesCountToday)
	fmt.Fprintf(w, "  %-30s %22s\n", "Sales this month", core.FormatMoney(m.SalesMonth))
	fmt.Fprintf(w, "  %-30s %22d\n", "Pending quotations", m.QuotationsOpen)
	fmt.Fprintf(w, "  %-30s %22d\n", "Products low on stock", m.LowStockProducts)
	if len(m.TopProducts) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 56))
		fmt.Fprintln(w, "  TOP PRODUCTS")
		for _, p := range m.TopProducts {
			fmt.Fprintf(w, "  %-10s %-20s %8s %14s\n",
				p.ProductCode, truncate(p.ProductName, 20), p.Quantity.String(), core.FormatMoney(p.Amount))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 56))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "POS ADMIN COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  INVENTORY")
	fmt.Fprintln(w, "  /products                        List products with stock")
	fmt.Fprintln(w, "  /search <text>                   Search products by name or code")
	fmt.Fprintln(w, "  /adjust <id> <+/-qty> <reason>   Manual stock adjustment")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  CLIENTS")
	fmt.Fprintln(w, "  /clients                         List clients")
	fmt.Fprintln(w, "  /client-new                      Create client (interactive)")
	fmt.Fprintln(w, "  /client-edit <id>                Edit client (interactive)")
	fmt.Fprintln(w, "  /client-del <id>                 Delete client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  QUOTATIONS")
	fmt.Fprintln(w, "  /quotes                          List quotations")
	fmt.Fprintln(w, "  /quote <id>                      Show quotation detail")
	fmt.Fprintln(w, "  /edit-quote <id>                 Edit detail, save or convert to a sale")
	fmt.Fprintln(w, "  /quote-del <id>                  Delete quotation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SALES")
	fmt.Fprintln(w, "  /cart                            New cart (checkout, hold, quote)")
	fmt.Fprintln(w, "  /held                            List held carts")
	fmt.Fprintln(w, "  /resume <id>                     Resume a held cart")
	fmt.Fprintln(w, "  /discard-held <id>               Discard a held cart")
	fmt.Fprintln(w, "  /dashboard                       Sales metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  USERS (admin)")
	fmt.Fprintln(w, "  /users                           List users")
	fmt.Fprintln(w, "  /user-new                        Create user (interactive)")
	fmt.Fprintln(w, "  /user-del <id>                   Delete user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /whoami                          Current operator")
	fmt.Fprintln(w, "  /help                            Show this help")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ASSISTANT MODE  (no / prefix)")
	fmt.Fprintln(w, "  Describe what the customer wants in plain words.")
	fmt.Fprintln(w, "  Example: \"2 collares rojos y un arnés talla M\"")
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printEditorHelp(w io.Writer, kind core.EditorKind) {
	fmt.Fprintln(w, "  add                    Add an empty row")
	fmt.Fprintln(w, "  find <row> <text>      Search products for a row")
	fmt.Fprintln(w, "  pick <row> [n]         Use suggestion n (default 1) for a row")
	fmt.Fprintln(w, "  qty <row> <value>      Set quantity")
	fmt.Fprintln(w, "  price <row> <value>    Set unit price")
	fmt.Fprintln(w, "  rm <row>               Remove a row")
	fmt.Fprintln(w, "  customer <id|->        Set or clear the customer")
	fmt.Fprintln(w, "  ai <text>              Ask the assistant for more lines")
	fmt.Fprintln(w, "  show                   Show rows and totals")
	if kind == core.EditorQuotation {
		fmt.Fprintln(w, "  save                   Save quotation detail")
	} else {
		fmt.Fprintln(w, "  quote                  Save the cart as a new quotation")
		fmt.Fprintln(w, "  hold [label]           Park the cart")
	}
	fmt.Fprintln(w, "  checkout               Register the sale")
	fmt.Fprintln(w, "  cancel                 Close the editor")
}
