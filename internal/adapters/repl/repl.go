package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pos-admin/internal/app"
	"pos-admin/internal/backend"
	"pos-admin/internal/core"
)

var errExit = errors.New("exit")

// console holds one operator's REPL state.
type console struct {
	ctx  context.Context
	svc  app.ApplicationService
	in   *bufio.Reader
	out  io.Writer
	sess *core.Session
	ui   core.UIState
}

// Run starts the interactive REPL loop on stdout.
// It asks for credentials, dispatches slash commands deterministically,
// and routes natural language input through the cart assistant.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	run(ctx, svc, reader, os.Stdout)
}

func run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	c := &console{ctx: ctx, svc: svc, in: reader, out: out, ui: core.Closed()}

	fmt.Fprintln(out, "POS Admin")
	if !c.login() {
		return
	}
	fmt.Fprintf(out, "Logged in as %s (%s).\n", c.sess.Username, c.sess.Role)
	fmt.Fprintln(out, "Describe what the customer wants to build a cart, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := c.dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %s\n", errorText(err))
			}
			continue
		}

		// No slash prefix → route to the cart assistant.
		c.assist(input)
	}
}

// errorText prefers the backend's own rejection message over the wrapped chain.
func errorText(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (c *console) readLine(prompt string) string {
	fmt.Fprint(c.out, prompt)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *console) login() bool {
	for attempt := 0; attempt < 3; attempt++ {
		user := c.readLine("Username: ")
		if user == "" {
			return false
		}
		pass := c.readLine("Password: ")
		sess, err := c.svc.Login(c.ctx, user, pass)
		if err != nil {
			fmt.Fprintf(c.out, "Login failed: %v\n", err)
			continue
		}
		c.sess = sess
		return true
	}
	fmt.Fprintln(c.out, "Too many failed attempts.")
	return false
}

// confirm moves the UI into Confirming, asks y/n, and restores the previous mode.
func (c *console) confirm(action core.ConfirmAction) bool {
	next, err := c.ui.Confirm(action)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %s\n", errorText(err))
		return false
	}
	c.ui = next
	choice := strings.ToLower(c.readLine(action.Prompt + " (y/n): "))
	c.ui = c.ui.Resume()
	return choice == "y" || choice == "yes"
}

func (c *console) dispatchSlash(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	ctx, svc, sess := c.ctx, c.svc, c.sess

	switch cmd {
	case "products", "stock":
		result, err := svc.ListProducts(ctx, sess)
		if err != nil {
			return err
		}
		printProducts(c.out, result)

	case "search":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /search <text>")
			return nil
		}
		result, err := svc.SearchProducts(ctx, sess, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printProducts(c.out, result)

	case "adjust":
		if len(args) < 3 {
			fmt.Fprintln(c.out, "Usage: /adjust <product-id> <+/-qty> <reason>")
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid product id: %s\n", args[0])
			return nil
		}
		qty, err := core.ParseNumber(args[1])
		if err != nil || qty.IsZero() {
			fmt.Fprintf(c.out, "Invalid quantity: %s\n", args[1])
			return nil
		}
		p, err := svc.AdjustStock(ctx, sess, app.AdjustStockRequest{
			ProductID: id, Quantity: qty, Reason: strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Stock for %s %s is now %s.\n", p.Code, p.Name, p.Stock.String())

	case "clients":
		result, err := svc.ListClients(ctx, sess)
		if err != nil {
			return err
		}
		printClients(c.out, result)

	case "client-new":
		cl, ok := c.clientWizard(core.Client{})
		if !ok {
			return nil
		}
		saved, err := svc.SaveClient(ctx, sess, cl)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Client created (ID: %d).\n", saved.ID)

	case "client-edit":
		id, ok := c.intArg(args, "Usage: /client-edit <client-id>")
		if !ok {
			return nil
		}
		existing, err := svc.GetClient(ctx, sess, id)
		if err != nil {
			return err
		}
		cl, ok := c.clientWizard(*existing)
		if !ok {
			return nil
		}
		if _, err := svc.SaveClient(ctx, sess, cl); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Client updated.")

	case "client-del":
		id, ok := c.intArg(args, "Usage: /client-del <client-id>")
		if !ok {
			return nil
		}
		if !c.confirm(core.ConfirmAction{Kind: core.ConfirmDeleteClient, TargetID: id, Prompt: fmt.Sprintf("Delete client %d?", id)}) {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
		if err := svc.DeleteClient(ctx, sess, id); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Client deleted.")

	case "quotes", "quotations":
		result, err := svc.ListQuotations(ctx, sess)
		if err != nil {
			return err
		}
		printQuotations(c.out, result)

	case "quote":
		id, ok := c.intArg(args, "Usage: /quote <quotation-id>")
		if !ok {
			return nil
		}
		result, err := svc.GetQuotation(ctx, sess, id)
		if err != nil {
			return err
		}
		printQuotationDetail(c.out, result)

	case "quote-del":
		id, ok := c.intArg(args, "Usage: /quote-del <quotation-id>")
		if !ok {
			return nil
		}
		if !c.confirm(core.ConfirmAction{Kind: core.ConfirmDeleteQuotation, TargetID: id, Prompt: fmt.Sprintf("Delete quotation %d?", id)}) {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
		if err := svc.DeleteQuotation(ctx, sess, id); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Quotation deleted.")

	case "edit-quote":
		id, ok := c.intArg(args, "Usage: /edit-quote <quotation-id>")
		if !ok {
			return nil
		}
		ed, err := svc.OpenQuotationEditor(ctx, sess, id)
		if err != nil {
			return err
		}
		return c.editLoop(fmt.Sprintf("quote-%d", id), ed)

	case "cart", "new-sale":
		return c.editLoop("cart", svc.NewCartEditor(sess))

	case "held":
		carts, err := svc.ListHeldCarts(ctx)
		if err != nil {
			return err
		}
		printHeldCarts(c.out, carts)

	case "resume":
		id, ok := c.intArg(args, "Usage: /resume <held-cart-id>")
		if !ok {
			return nil
		}
		ed, err := svc.ResumeHeldCart(ctx, sess, id)
		if err != nil {
			return err
		}
		return c.editLoop("cart", ed)

	case "discard-held":
		id, ok := c.intArg(args, "Usage: /discard-held <held-cart-id>")
		if !ok {
			return nil
		}
		if err := svc.DiscardHeldCart(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Held cart discarded.")

	case "users":
		result, err := svc.ListUsers(ctx, sess)
		if err != nil {
			return err
		}
		printUsers(c.out, result)

	case "user-new":
		u, ok := c.userWizard(core.User{})
		if !ok {
			return nil
		}
		saved, err := svc.SaveUser(ctx, sess, u)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "User %s created (ID: %d).\n", saved.Username, saved.ID)

	case "user-del":
		id, ok := c.intArg(args, "Usage: /user-del <user-id>")
		if !ok {
			return nil
		}
		if !c.confirm(core.ConfirmAction{Kind: core.ConfirmDeleteUser, TargetID: id, Prompt: fmt.Sprintf("Delete user %d?", id)}) {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
		if err := svc.DeleteUser(ctx, sess, id); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "User deleted.")

	case "dashboard", "dash":
		m, err := svc.GetDashboard(ctx, sess)
		if err != nil {
			return err
		}
		printDashboard(c.out, m)

	case "whoami":
		fmt.Fprintf(c.out, "%s (ID %d, %s)\n", sess.Username, sess.UserID, sess.Role)

	case "help", "h":
		printHelp(c.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(c.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (c *console) intArg(args []string, usage string) (int, bool) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintf(c.out, "Invalid id: %s\n", args[0])
		return 0, false
	}
	return n, true
}

// assist sends free text to the cart assistant and opens a cart with the accepted lines.
func (c *console) assist(input string) {
	fmt.Fprintln(c.out, "[AI] Processing...")
	accumulatedInput := input

	for rounds := 1; rounds <= 3; rounds++ {
		result, err := c.svc.SuggestCart(c.ctx, c.sess, accumulatedInput)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %s\n", errorText(err))
			return
		}

		if result.IsClarification {
			fmt.Fprintf(c.out, "\n[AI]: %s\n", result.ClarificationMessage)
			followUp := c.readLine("> ")
			if followUp == "" || strings.EqualFold(followUp, "cancel") || strings.HasPrefix(followUp, "/") {
				fmt.Fprintln(c.out, "(AI session cancelled)")
				return
			}
			accumulatedInput = fmt.Sprintf("Original request: %s\nClarification requested: %s\nOperator response: %s",
				accumulatedInput, result.ClarificationMessage, followUp)
			fmt.Fprintln(c.out, "[AI] Thinking...")
			continue
		}

		printSuggestion(c.out, result)
		if result.Proposal.Confidence < 0.6 {
			fmt.Fprintln(c.out, "\nWARNING: Low confidence suggestion.")
		}
		choice := strings.ToLower(c.readLine("\nOpen a cart with these lines? (y/n): "))
		if choice != "y" && choice != "yes" {
			fmt.Fprintln(c.out, "Suggestion discarded.")
			return
		}
		ed := c.svc.NewCartEditor(c.sess)
		ed.Append(result.Items...)
		if err := c.editLoop("cart", ed); err != nil && !errors.Is(err, errExit) {
			fmt.Fprintf(c.out, "Error: %s\n", errorText(err))
		}
		return
	}
	fmt.Fprintln(c.out, "Could not produce a suggestion. Try /cart instead, type /help.")
}

// editLoop drives an editor until it is saved, sold, held or discarded.
func (c *console) editLoop(id string, ed *core.Editor) error {
	next, err := c.ui.Edit(id)
	if err != nil {
		return err
	}
	c.ui = next
	defer func() {
		ed.Close()
		c.ui = c.ui.Close()
	}()

	title := "CART"
	if ed.Kind == core.EditorQuotation {
		title = fmt.Sprintf("QUOTATION %d", ed.QuotationID)
	}
	printDraft(c.out, title, ed.Draft())
	fmt.Fprintln(c.out, "Type 'help' for editor commands.")

	for {
		raw := c.readLine(fmt.Sprintf("\n[%s] edit> ", strings.ToLower(title)))
		parts := strings.Fields(raw)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		done, err := c.editCommand(ed, title, cmd, args)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %s\n", errorText(err))
		}
		if done {
			return nil
		}
	}
}

// editCommand runs one editor command and reports whether the editor should close.
func (c *console) editCommand(ed *core.Editor, title, cmd string, args []string) (bool, error) {
	d := ed.Draft()
	row := func() (int, error) {
		if len(args) < 1 {
			return 0, fmt.Errorf("row number required")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid row %q", args[0])
		}
		return n - 1, nil
	}

	switch cmd {
	case "add":
		r := ed.AddRow()
		fmt.Fprintf(c.out, "Row %d added. Use 'find %d <text>' to pick a product.\n", r+1, r+1)

	case "rm", "remove":
		r, err := row()
		if err != nil {
			return false, err
		}
		if err := ed.RemoveRow(r); err != nil {
			return false, err
		}
		printDraft(c.out, title, d)

	case "qty", "price":
		r, err := row()
		if err != nil {
			return false, err
		}
		if len(args) < 2 {
			return false, fmt.Errorf("usage: %s <row> <value>", cmd)
		}
		if cmd == "qty" {
			err = d.SetQuantityText(r, args[1])
		} else {
			err = d.SetUnitPriceText(r, args[1])
		}
		if err != nil {
			return false, err
		}
		printDraft(c.out, title, d)

	case "find":
		r, err := row()
		if err != nil {
			return false, err
		}
		cands, err := ed.Search(c.ctx, strings.Join(args[1:], " "), r)
		if err != nil {
			return false, err
		}
		printSuggestions(c.out, r, cands)

	case "pick":
		r, err := row()
		if err != nil {
			return false, err
		}
		k := 1
		if len(args) >= 2 {
			if k, err = strconv.Atoi(args[1]); err != nil {
				return false, fmt.Errorf("invalid suggestion %q", args[1])
			}
		}
		if err := ed.SelectSuggestion(r, k-1); err != nil {
			return false, err
		}
		printDraft(c.out, title, d)

	case "customer":
		if len(args) < 1 || args[0] == "-" {
			ed.CustomerID = nil
			fmt.Fprintln(c.out, "Customer cleared.")
			return false, nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid client id %q", args[0])
		}
		cl, err := c.svc.GetClient(c.ctx, c.sess, id)
		if err != nil {
			return false, err
		}
		ed.CustomerID = &cl.ID
		fmt.Fprintf(c.out, "Customer: %s (%s)\n", cl.Name, cl.DocumentNumber)

	case "ai":
		res, err := c.svc.SuggestCart(c.ctx, c.sess, strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		if res.IsClarification {
			fmt.Fprintf(c.out, "[AI]: %s\n", res.ClarificationMessage)
			return false, nil
		}
		printSuggestion(c.out, res)
		if strings.ToLower(c.readLine("Add these lines? (y/n): ")) == "y" {
			ed.Append(res.Items...)
			printDraft(c.out, title, d)
		}

	case "show", "ls":
		printDraft(c.out, title, d)

	case "save":
		if ed.Kind != core.EditorQuotation {
			return false, fmt.Errorf("only quotations can be saved; use 'quote' to create one from this cart")
		}
		if _, err := c.svc.SaveQuotationEditor(c.ctx, c.sess, ed); err != nil {
			// Stay in the editor so the operator can fix the rows and retry.
			return false, err
		}
		fmt.Fprintln(c.out, "Quotation saved.")
		return true, nil

	case "quote":
		res, err := c.svc.SaveAsQuotation(c.ctx, c.sess, ed)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "Quotation %d created.\n", res.Quotation.ID)
		return true, nil

	case "checkout", "pay":
		req, ok := c.checkoutWizard(ed)
		if !ok {
			return false, nil
		}
		if !c.confirm(core.ConfirmAction{Kind: core.ConfirmCheckout, Prompt: "Register this sale?"}) {
			fmt.Fprintln(c.out, "Checkout cancelled.")
			return false, nil
		}
		res, err := c.svc.Checkout(c.ctx, c.sess, ed, req)
		if err != nil {
			return false, err
		}
		printSale(c.out, res)
		return true, nil

	case "hold":
		cart, err := c.svc.HoldCart(c.ctx, c.sess, ed, strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "Cart held as #%d (%s). Use /resume %d to continue.\n", cart.ID, cart.Label, cart.ID)
		return true, nil

	case "cancel", "close", "exit":
		if d.Len() > 0 && !c.confirm(core.ConfirmAction{Kind: core.ConfirmDiscardDraft, Prompt: "Discard unsaved changes?"}) {
			return false, nil
		}
		fmt.Fprintln(c.out, "Editor closed.")
		return true, nil

	case "help":
		printEditorHelp(c.out, ed.Kind)

	default:
		fmt.Fprintf(c.out, "Unknown editor command: %s (type 'help')\n", cmd)
	}
	return false, nil
}
