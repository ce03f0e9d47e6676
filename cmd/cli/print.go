package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func stateName(s apiv1.ProcessState) string {
	switch s {
	case apiv1.ProcessStateRunning:
		return "Running"
	case apiv1.ProcessStateExited:
		return "Exited"
	case apiv1.ProcessStateDetached:
		return "Detached"
	case apiv1.ProcessStateTerminated:
		return "Stopped"
	default:
		return "Unknown"
	}
}

func printStatusTable(w io.Writer, id string, st *apiv1.ProcessStatus, p *apiv1.Process) {
	state := ""
	pid := ""
	exit := "-"
	if st != nil {
		state = stateName(st.GetState())
		pid = strconv.Itoa(int(st.GetPid()))
		if code, ok := st.GetExitCode(); ok {
			exit = strconv.Itoa(int(code))
		}
	}
	cmd := ""
	if p != nil {
		cmd = strings.TrimSpace(strings.Join(append([]string{p.GetCommand()}, p.GetArgs()...), " "))
	}

	printTable(w,
		[]string{"ID", "PID", "STATE", "EXIT", "COMMAND"},
		[]string{id, pid, state, exit, cmd},
		[]int{36, 3, 7, 4, 7},
	)
}

func printTable(w io.Writer, header, row []string, minWidths []int) {
	widths := make([]int, len(header))
	for i := range header {
		widths[i] = max(minWidths[i], len(header[i]), len(row[i]))
	}

	line := func(cells []string) {
		for i, c := range cells {
			fmt.Fprintf(w, "| %s ", pad(c, widths[i]))
		}
		fmt.Fprintln(w, "|")
	}
	sep := func() {
		for _, width := range widths {
			fmt.Fprintf(w, "+-%s-", strings.Repeat("-", width))
		}
		fmt.Fprintln(w, "+")
	}

	sep()
	line(header)
	sep()
	line(row)
	sep()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
