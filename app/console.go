package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Console drives the recorder from text commands, one per line.
type Console struct {
	c   *AppContainer
	in  io.Reader
	out io.Writer
}

// NewConsole returns a console reading commands from in and writing replies to out.
func NewConsole(c *AppContainer, in io.Reader, out io.Writer) *Console {
	return &Console{c: c, in: in, out: out}
}

const consoleHelp = "commands: start|s, pause|p, stop|x, export|q, status, help"

// Run starts the container and processes commands until shutdown. End of
// input behaves like export.
func (con *Console) Run() {
	con.c.Start()
	defer con.c.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(con.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-con.c.Context().Done():
				return
			}
		}
	}()

	fmt.Fprintln(con.out, consoleHelp)
	ctx := con.c.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				con.c.Post(con.c.Control.ExportAndExit)
				<-ctx.Done()
				return
			}
			con.dispatch(line)
		}
	}
}

func (con *Console) dispatch(line string) {
	ctl := con.c.Control
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
	case "start", "s", "resume", "r":
		con.c.Post(ctl.Start)
	case "pause", "p":
		con.c.Post(ctl.Pause)
	case "stop", "x":
		con.c.Post(ctl.Stop)
	case "export", "q", "quit", "exit":
		con.c.Post(ctl.ExportAndExit)
	case "status":
		con.printStatus()
	case "help", "?":
		fmt.Fprintln(con.out, consoleHelp)
	default:
		fmt.Fprintf(con.out, "unknown command %q; %s\n", line, consoleHelp)
	}
}

func (con *Console) printStatus() {
	s := con.c.Recorder.Snapshot()
	ready := "measuring"
	if con.c.Monitor.Ready() {
		ready = fmt.Sprintf("%.1f fps", con.c.Monitor.MeasuredFPS())
	}
	fmt.Fprintf(con.out, "status=%s writing=%t frames=%d rate=%s file=%q\n",
		s.Status, s.WriteEnabled, s.FramesWritten, ready, s.SessionFile)
}

// ConsoleNotifier prints notices and answers prompts from fixed choices; it is
// used when no desktop dialogs are available.
type ConsoleNotifier struct {
	Out io.Writer
	// ExportTo is the destination used when an export is confirmed; empty declines.
	ExportTo string
}

func (n *ConsoleNotifier) Info(title, message string) {
	fmt.Fprintf(n.Out, "[%s] %s\n", title, message)
}

func (n *ConsoleNotifier) Error(title, message string) {
	fmt.Fprintf(n.Out, "[%s] error: %s\n", title, message)
}

func (n *ConsoleNotifier) Confirm(title, message string) bool {
	fmt.Fprintf(n.Out, "[%s] %s -> %t\n", title, message, n.ExportTo != "")
	return n.ExportTo != ""
}

func (n *ConsoleNotifier) PromptSave(defaultName, sourcePath string) (string, bool, error) {
	if n.ExportTo == "" {
		return "", false, nil
	}
	return n.ExportTo, true, nil
}
