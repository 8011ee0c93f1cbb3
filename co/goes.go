// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Goes to run and manage life-cycle of go routines. All routines share one
// context, cancelled by Stop.
type Goes struct {
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (g *Goes) init() {
	g.once.Do(func() {
		g.ctx, g.cancel = context.WithCancel(context.Background())
	})
}

// Go run f in go routine. f must return soon after ctx is done.
func (g *Goes) Go(f func(ctx context.Context)) {
	g.init()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f(g.ctx)
	}()
}

// Stop cancels the shared context and waits for all routines to return.
// Routines started after Stop see an already cancelled context.
func (g *Goes) Stop() {
	g.init()
	g.cancel()
	g.wg.Wait()
}

// Wait wait for all go routines started by 'Go' done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done return the done channel for exiting of all go routines.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
