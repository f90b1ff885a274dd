package lockstepintegration

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/arloliu/go-stage/ascii"
	"github.com/stretchr/testify/require"
)

// simController emulates one ASCII controller with a single lockstep group.
//
// A motion command keeps the group BUSY for groupPolls info requests and the
// primary axis BUSY for axisPolls bare queries after that. Velocity moves
// stay BUSY until stopped.
type simController struct {
	address    int
	group      int
	groupPolls int
	axisPolls  int

	mu        sync.Mutex
	enabled   bool
	axis1     int
	axis2     int
	position  int
	groupBusy int
	axisBusy  int
	velocity  bool
	received  []string
}

func newSimController(t *testing.T, address, group, groupPolls, axisPolls int) (*simController, string) {
	t.Helper()

	sim := &simController{
		address:    address,
		group:      group,
		groupPolls: groupPolls,
		axisPolls:  axisPolls,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go sim.serve(conn)
		}
	}()

	return sim, ln.Addr().String()
}

func (s *simController) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.received...)
}

func (s *simController) serve(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}

		reply, ok := s.handle(line)
		if !ok {
			continue
		}

		if _, err := conn.Write(reply.Encode()); err != nil {
			return
		}
	}
}

func (s *simController) handle(line string) (ascii.Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, line)

	cmd, err := ascii.ParseCommand(line)
	if err != nil || (cmd.Device != s.address && cmd.Device != ascii.BroadcastAddress) {
		return ascii.Reply{}, false
	}

	reply := ascii.Reply{
		Device:  s.address,
		Axis:    cmd.Axis,
		Flag:    ascii.FlagOK,
		Status:  ascii.StatusIdle,
		Warning: ascii.NoWarning,
		Data:    "0",
	}

	if cmd.IsQuery() {
		if cmd.Axis == s.axis1 && (s.velocity || s.axisBusy > 0) {
			if s.axisBusy > 0 {
				s.axisBusy--
			}
			reply.Status = ascii.StatusBusy
		}

		return reply, true
	}

	fields := strings.Fields(cmd.Data)
	if cmd.Axis != 0 || len(fields) < 3 || fields[0] != "lockstep" || fields[1] != strconv.Itoa(s.group) {
		return reject(reply, "BADCOMMAND"), true
	}

	switch op, args := fields[2], fields[3:]; op {
	case "setup":
		return s.setup(reply, args), true
	case "info":
		if s.busy() {
			reply.Status = ascii.StatusBusy
			s.stepGroup()
		}
		if !s.enabled {
			reply.Data = "disabled"
		} else {
			reply.Data = strconv.Itoa(s.axis1) + " " + strconv.Itoa(s.axis2) + " 0 0"
		}

		return reply, true
	case "home", "move", "stop":
		if !s.enabled {
			return reject(reply, "BADCOMMAND"), true
		}

		return s.motion(reply, op, args), true
	}

	return reject(reply, "BADCOMMAND"), true
}

func (s *simController) setup(reply ascii.Reply, args []string) ascii.Reply {
	switch {
	case len(args) == 3 && args[0] == "enable":
		a1, err1 := strconv.Atoi(args[1])
		a2, err2 := strconv.Atoi(args[2])
		if err1 != nil || err2 != nil || a1 == a2 {
			return reject(reply, "BADDATA")
		}
		s.enabled, s.axis1, s.axis2 = true, a1, a2
	case len(args) == 1 && args[0] == "disable":
		s.enabled = false
	default:
		return reject(reply, "BADCOMMAND")
	}

	return reply
}

func (s *simController) motion(reply ascii.Reply, op string, args []string) ascii.Reply {
	switch op {
	case "stop":
		if s.busy() {
			reply.Status = ascii.StatusBusy
			reply.Warning = "NI"
			s.velocity = false
			s.groupBusy, s.axisBusy = 1, 0
		}

		return reply
	case "home":
		s.position = 0
	case "move":
		if len(args) != 2 {
			return reject(reply, "BADDATA")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return reject(reply, "BADDATA")
		}

		switch args[0] {
		case "abs":
			s.position = n
		case "rel":
			s.position += n
		case "vel":
			s.velocity = true
			reply.Status = ascii.StatusBusy

			return reply
		default:
			return reject(reply, "BADCOMMAND")
		}
	}

	s.groupBusy, s.axisBusy = s.groupPolls, s.axisPolls
	if s.busy() || s.axisBusy > 0 {
		reply.Status = ascii.StatusBusy
	}

	return reply
}

func (s *simController) busy() bool {
	return s.velocity || s.groupBusy > 0
}

func (s *simController) stepGroup() {
	if !s.velocity && s.groupBusy > 0 {
		s.groupBusy--
	}
}

func reject(reply ascii.Reply, reason string) ascii.Reply {
	reply.Flag = ascii.FlagRejected
	reply.Data = reason

	return reply
}
