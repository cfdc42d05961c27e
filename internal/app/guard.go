package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrAlreadyRunning другая копия программы уже запущена
var ErrAlreadyRunning = errors.New("another copy is already running")

// Guard ищет другие запущенные копии программы по списку процессов ОС.
// Проверка рекомендательная: два запуска в один момент могут не увидеть друг друга.
type Guard struct {
	program string
	pid     int32
	list    func(ctx context.Context) ([]processInfo, error)
}

type processInfo struct {
	pid     int32
	ppid    int32
	cmdline []string
}

func NewGuard(program string) *Guard {
	return &Guard{
		program: program,
		pid:     int32(os.Getpid()),
		list:    listProcesses,
	}
}

// CheckSingleInstance возвращает ErrAlreadyRunning, если найден чужой процесс с той же программой
func (g *Guard) CheckSingleInstance(ctx context.Context) error {
	procs, err := g.list(ctx)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	skip := ancestors(procs, g.pid)
	skip[g.pid] = true

	for _, p := range procs {
		if skip[p.pid] {
			continue
		}
		if matchesProgram(p.cmdline, g.program) {
			return fmt.Errorf("%w: '%s' (pid %d)", ErrAlreadyRunning, g.program, p.pid)
		}
	}

	return nil
}

// matchesProgram: программа - первый токен командной строки.
// Обёртки (sudo, time, chronic) сами по себе копией не считаются.
func matchesProgram(cmdline []string, program string) bool {
	return len(cmdline) > 0 && filepath.Base(cmdline[0]) == filepath.Base(program)
}

// ancestors pid всех предков pid по списку процессов
func ancestors(procs []processInfo, pid int32) map[int32]bool {
	parent := make(map[int32]int32, len(procs))
	for _, p := range procs {
		parent[p.pid] = p.ppid
	}

	out := map[int32]bool{}
	for cur, ok := parent[pid]; ok && cur > 0 && !out[cur]; cur, ok = parent[cur] {
		out[cur] = true
	}
	return out
}

func listProcesses(ctx context.Context) ([]processInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		cmdline, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			// процесс успел завершиться или недоступен
			continue
		}
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			continue
		}
		infos = append(infos, processInfo{pid: p.Pid, ppid: ppid, cmdline: cmdline})
	}

	return infos, nil
}
