package daemon

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/rexlang/rex/pkg/daemon/internal/api"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/mods/storeaddr"
	"github.com/rexlang/rex/pkg/store"
)

// ServeOpts keeps options that can be passed to Serve.
type ServeOpts struct {
	// If not nil, will be closed when the daemon is ready to serve requests.
	Ready chan<- struct{}
	// Causes the daemon to abort if closed or sent any data. If nil, Serve
	// will set up its own signal channel by listening to SIGINT and SIGTERM.
	Signals <-chan os.Signal
	// If not nil, overrides the response of the version RPC.
	Version *int
	// Targets to host in addition to the store target.
	Targets []eval.Target
}

// Serve runs the daemon service, listening on the socket specified by
// sockpath and serving data from dbpath until all clients have disconnected
// or a signal arrives. See the doc for ServeOpts for additional options.
func Serve(sockpath, dbpath string, opts ServeOpts) int {
	logger.Println("pid is", os.Getpid())
	logger.Println("going to listen", sockpath)
	listener, err := net.Listen("unix", sockpath)
	if err != nil {
		logger.Printf("failed to listen on %s: %v", sockpath, err)
		logger.Println("aborting")
		return 2
	}

	st, err := store.NewStore(dbpath)
	if err != nil {
		logger.Printf("failed to open storage: %v", err)
		logger.Printf("serving anyway")
	}

	version := api.Version
	if opts.Version != nil {
		version = *opts.Version
	}
	targets := make(map[string]eval.Target)
	if st != nil {
		t := storeaddr.New(st).Target
		targets[t.Name()] = t
	}
	for _, t := range opts.Targets {
		targets[t.Name()] = t
	}
	svc := &service{version, st, err, targets}

	connCh := make(chan net.Conn, 10)
	listenErrCh := make(chan error, 1)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				listenErrCh <- err
				close(listenErrCh)
				return
			}
			connCh <- conn
		}
	}()

	sigCh := opts.Signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		sigCh = ch
	}

	conns := make(map[net.Conn]struct{})
	connDoneCh := make(chan net.Conn, 10)

	interrupt := func() {
		if len(conns) == 0 {
			logger.Println("exiting since there are no clients")
		}
		logger.Printf("going to close %v active connections", len(conns))
		for conn := range conns {
			// Ignore the error - if we can't close the connection it's
			// because the client has closed it already.
			conn.Close()
		}
	}

	if opts.Ready != nil {
		close(opts.Ready)
	}

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Printf("received signal %v", sig)
			interrupt()
			break loop
		case err := <-listenErrCh:
			logger.Println("could not listen:", err)
			if len(conns) == 0 {
				logger.Println("exiting since there are no clients")
				break loop
			}
			logger.Println("continuing to serve until all existing clients exit")
		case conn := <-connCh:
			conns[conn] = struct{}{}
			go func() {
				serveConn(conn, svc)
				connDoneCh <- conn
			}()
		case conn := <-connDoneCh:
			delete(conns, conn)
			if len(conns) == 0 {
				logger.Println("all clients disconnected, exiting")
				break loop
			}
		}
	}

	err = os.Remove(sockpath)
	if err != nil {
		logger.Printf("failed to remove socket %s: %v", sockpath, err)
	}
	if st != nil {
		err = st.Close()
		if err != nil {
			logger.Printf("failed to close storage: %v", err)
		}
	}
	err = listener.Close()
	if err != nil {
		logger.Printf("failed to close listener: %v", err)
	}
	// Ensure that the listener goroutine has exited before returning.
	<-listenErrCh
	return 0
}

// serveConn runs the RPC service on one client connection until the client
// disconnects.
func serveConn(conn net.Conn, svc *service) {
	rpcConn := jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(conn, jsonrpc2.VarintObjectCodec{}),
		handler(svc))
	<-rpcConn.DisconnectNotify()
}
