package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/game"
	"github.com/xtding233/gacha-roulette/internal/reel"
	"github.com/xtding233/gacha-roulette/internal/session"
	"github.com/xtding233/gacha-roulette/internal/store"
)

func runPlay(args []string) error {
	set := flag.NewFlagSet("play", flag.ContinueOnError)
	flags, envFile := commonFlags(set)
	watch := set.Bool("watch", false, "reload catalogs from -config-dir when they change")
	noAnim := set.Bool("no-anim", false, "skip the spin animation")
	if err := set.Parse(args); err != nil {
		return err
	}
	a, err := newApp(set, flags, *envFile)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	v, err := a.variant()
	if err != nil {
		return err
	}
	file, err := store.OpenFile(a.cfg.StateFile)
	if err != nil {
		// unreadable state is not fatal: start fresh in memory
		a.log.Warn("state file unusable, progress will not be saved", zap.String("path", a.cfg.StateFile), zap.Error(err))
	}
	var st store.Store = store.NewMemory()
	if file != nil {
		st = file
		a.log.Info("state file opened", zap.String("path", file.Path()))
	}
	s := session.New(v, session.Options{
		Store:  store.WithPrefix(st, v.Name),
		RNG:    a.rng(),
		Logger: a.log,
	})

	var changes <-chan string
	if *watch && a.cfg.ConfigDir != "" {
		w := game.NewFileWatcher(game.VariantPaths(a.cfg.ConfigDir, a.cfg.Variant, a.cfg.Season), time.Second)
		w.Start()
		defer w.Stop()
		changes = w.Changes()
	}

	p := &player{app: a, s: s, anim: !*noAnim}
	p.banner()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	p.prompt()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := p.handle(line); quit {
				return nil
			}
			p.prompt()
		case now := <-ticker.C:
			s.Tick(now)
		case path := <-changes:
			a.loader.Invalidate()
			nv, err := a.variant()
			if err != nil {
				a.log.Warn("reload rejected", zap.String("path", filepath.Base(path)), zap.Error(err))
				continue
			}
			s.Reload(nv)
			p.toast("🔄", "Catalog reloaded")
			p.prompt()
		}
	}
}

type player struct {
	*app
	s    *session.Session
	anim bool
}

func (p *player) toast(icon, msg string) {
	fmt.Fprintf(p.out, "%s %s\n", icon, msg)
}

func (p *player) fail(err error) {
	v := p.s.Variant()
	var msg string
	switch {
	case errors.Is(err, session.ErrInsufficientPrimary):
		msg = "Not enough " + v.PrimaryName + "!"
	case errors.Is(err, session.ErrInsufficientSecondary):
		msg = "Not enough " + v.SecondaryName + "!"
	case errors.Is(err, session.ErrEquipFull):
		msg = fmt.Sprintf("Limit reached! At most %d can work at once", v.EquipCap)
	case errors.Is(err, session.ErrBuffActive):
		msg = "A buff is already active"
	case errors.Is(err, session.ErrWrongAdminCode):
		msg = "Wrong code!"
	default:
		msg = err.Error()
	}
	p.toast("❌", msg)
}

func (p *player) prompt() {
	primary, secondary := p.s.Balance()
	v := p.s.Variant()
	fmt.Fprintf(p.out, "[%s %s | %s %d] > ", primary.StringFixed(1), v.PrimaryName, v.SecondaryName, secondary)
}

func (p *player) banner() {
	v := p.s.Variant()
	fmt.Fprintf(p.out, "🎰 %s roulette, spin costs %s %s. Type 'help'.\n", v.Name, v.SpinCost, v.PrimaryName)
	if ev, _, ok := p.s.CurrentEvent(); ok {
		fmt.Fprintf(p.out, "%s Event: %s (x%g)\n", ev.Emoji, ev.Name, ev.Multiplier)
	}
}

// handle runs one command line; it reports whether to quit.
func (p *player) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		p.help()
	case "status", "st":
		p.status()
	case "spin", "s":
		p.spin()
	case "odds":
		p.odds()
	case "inv", "inventory", "i":
		p.list("Inventory", p.s.Inventory())
	case "equipped", "eq":
		p.list("Equipped", p.s.Equipped())
	case "equip":
		p.withItem(args, p.s.Inventory(), func(it catalog.Item) {
			if err := p.s.Equip(it.InstanceID); err != nil {
				p.fail(err)
				return
			}
			p.toast("✅", fmt.Sprintf("%s is working: +%s %s/sec", it.Name, it.PrimaryValue, p.s.Variant().PrimaryName))
		})
	case "unequip":
		p.withItem(args, p.s.Equipped(), func(it catalog.Item) {
			if err := p.s.Unequip(it.InstanceID); err != nil {
				p.fail(err)
				return
			}
			p.toast("📦", it.Name+" went back to the inventory")
		})
	case "sell":
		p.withItem(args, p.s.Inventory(), func(it catalog.Item) {
			got, err := p.s.Sell(it.InstanceID)
			if err != nil {
				p.fail(err)
				return
			}
			p.toast("💫", fmt.Sprintf("Sold! +%d %s", got, p.s.Variant().SecondaryName))
		})
	case "shop":
		p.shop()
	case "buy":
		if len(args) != 1 {
			p.toast("❓", "usage: buy <buff>")
			return false
		}
		b, err := p.s.BuyBuff(args[0])
		if err != nil {
			p.fail(err)
			return false
		}
		p.toast(b.Emoji, fmt.Sprintf("%s active for %s", b.Name, b.Duration))
	case "block", "open":
		p.openBlock(args)
	case "admin":
		if len(args) != 1 {
			p.toast("❓", "usage: admin <code>")
			return false
		}
		if err := p.s.UnlockAdmin(args[0]); err != nil {
			p.fail(err)
			return false
		}
		p.toast("🔓", "Access granted. Welcome, admin!")
	case "grant":
		p.grant(args)
	case "reset":
		if err := p.s.Reset(); err != nil {
			p.fail(err)
			return false
		}
		p.toast("🔄", "Progress reset!")
	default:
		p.toast("❓", "unknown command "+cmd+"; try 'help'")
	}
	if err := p.s.SaveErr(); err != nil {
		p.toast("⚠️", "progress not saved: "+err.Error())
	}
	return false
}

func (p *player) help() {
	fmt.Fprintln(p.out, `  spin                 spin the roulette
  odds                 current drop chances
  inv / equipped       list items
  equip|unequip|sell N item number (from inv / equipped) or instance id
  shop / buy <buff>    buffs for the secondary currency
  block [id]           open a lucky block
  status               balances, income, buff and event
  admin <code>         enter admin mode
  grant <primary|secondary> <amount>, reset   (admin)
  quit`)
}

func (p *player) status() {
	v := p.s.Variant()
	primary, secondary := p.s.Balance()
	fmt.Fprintf(p.out, "%s: %s  %s: %d  income: %s/sec  admin: %v\n",
		v.PrimaryName, primary.StringFixed(1), v.SecondaryName, secondary, p.s.Rate(), p.s.IsAdmin())
	if b, ab, ok := p.s.ActiveBuff(); ok {
		fmt.Fprintf(p.out, "%s %s, %s left\n", b.Emoji, b.Name, time.Until(ab.ExpiresAt).Round(time.Second))
	}
	if ev, ae, ok := p.s.CurrentEvent(); ok {
		left := "all session"
		if !ae.EndsAt.IsZero() {
			left = time.Until(ae.EndsAt).Round(time.Second).String() + " left"
		}
		fmt.Fprintf(p.out, "%s Event %s x%g, %s\n", ev.Emoji, ev.Name, ev.Multiplier, left)
	}
}

func (p *player) spin() {
	res, err := p.s.Spin()
	if err != nil {
		p.fail(err)
		return
	}
	if p.anim {
		p.animate(res.Reel)
	}
	it := res.Item
	v := p.s.Variant()
	fmt.Fprintf(p.out, "%s %s! %s | %s/sec | %d %s\n",
		it.Emoji, v.Weights.DisplayName(it.Rarity), it.Name, it.PrimaryValue, it.SecondaryValue, v.SecondaryName)
}

// animate plays the strip; the result is already in the inventory.
func (p *player) animate(r reel.Reel) {
	settings := reel.FromCatalog(p.s.Variant().Reel)
	for _, idx := range reel.Frames(r, settings) {
		it := r.Items[idx]
		fmt.Fprintf(p.out, "\r  ▶ %s %-28s", it.Emoji, it.Name)
		time.Sleep(settings.Frame)
	}
	fmt.Fprintln(p.out)
}

func (p *player) odds() {
	for _, o := range p.s.Odds() {
		fmt.Fprintf(p.out, "  %-12s %7.3f%%", o.Name, o.Effective)
		if o.Effective != o.Base {
			fmt.Fprintf(p.out, "  (base %g%%)", o.Base)
		}
		fmt.Fprintln(p.out)
	}
}

func (p *player) list(title string, items []catalog.Item) {
	v := p.s.Variant()
	fmt.Fprintf(p.out, "%s (%d)\n", title, len(items))
	for i, it := range items {
		fmt.Fprintf(p.out, "  %2d. %s %-24s %-10s +%s/sec  %d %s\n",
			i+1, it.Emoji, it.Name, v.Weights.DisplayName(it.Rarity), it.PrimaryValue, it.SecondaryValue, v.SecondaryName)
	}
}

// withItem resolves a 1-based position or an instance id within items.
func (p *player) withItem(args []string, items []catalog.Item, fn func(catalog.Item)) {
	if len(args) != 1 {
		p.toast("❓", "which item? give its number or instance id")
		return
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(items) {
			p.fail(session.ErrItemNotFound)
			return
		}
		fn(items[n-1])
		return
	}
	for _, it := range items {
		if it.InstanceID == args[0] {
			fn(it)
			return
		}
	}
	p.fail(session.ErrItemNotFound)
}

func (p *player) shop() {
	v := p.s.Variant()
	if len(v.Buffs) == 0 && len(v.LuckyBlocks) == 0 {
		p.toast("🏪", "Nothing for sale here")
		return
	}
	for _, b := range v.Buffs {
		fmt.Fprintf(p.out, "  %s %-8s %-16s %d %s, %s (%s x%g)\n", b.Emoji, b.ID, b.Name, b.Cost, v.SecondaryName, b.Duration, b.Kind, b.Multiplier)
	}
	for _, lb := range v.LuckyBlocks {
		fmt.Fprintf(p.out, "  %s %s %s: %s %s\n", lb.Emoji, lb.ID, lb.Name, lb.Cost, v.PrimaryName)
		for _, d := range lb.Drops {
			if e, ok := v.Entry(d.EntryID); ok {
				fmt.Fprintf(p.out, "      %s %-24s %g%%\n", e.Emoji, e.Name, d.Chance)
			}
		}
	}
}

func (p *player) openBlock(args []string) {
	v := p.s.Variant()
	var id string
	switch {
	case len(args) == 1:
		id = args[0]
	case len(v.LuckyBlocks) > 0:
		id = v.LuckyBlocks[0].ID
	default:
		p.fail(session.ErrUnknownLuckyBlock)
		return
	}
	it, err := p.s.OpenLuckyBlock(id)
	if err != nil {
		p.fail(err)
		return
	}
	p.toast(it.Emoji, fmt.Sprintf("%s! %s from the lucky block", v.Weights.DisplayName(it.Rarity), it.Name))
}

func (p *player) grant(args []string) {
	if len(args) != 2 {
		p.toast("❓", "usage: grant <primary|secondary> <amount>")
		return
	}
	v := p.s.Variant()
	switch strings.ToLower(args[0]) {
	case "primary", "p", v.PrimaryName:
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			p.toast("❓", "amount must be a number")
			return
		}
		if err := p.s.GrantPrimary(amount); err != nil {
			p.fail(err)
			return
		}
		p.toast("💰", fmt.Sprintf("+%s %s", amount, v.PrimaryName))
	case "secondary", "s", v.SecondaryName:
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			p.toast("❓", "amount must be a whole number")
			return
		}
		if err := p.s.GrantSecondary(amount); err != nil {
			p.fail(err)
			return
		}
		p.toast("⭐", fmt.Sprintf("+%d %s", amount, v.SecondaryName))
	default:
		p.toast("❓", "usage: grant <primary|secondary> <amount>")
	}
}
