package host

import tea "github.com/charmbracelet/bubbletea"

// NavigateMsg pushes the page built by the named route. Replace swaps the top
// page instead. Done, when set, receives the outcome once the page is mounted.
type NavigateMsg struct {
	Route   string
	Args    any
	Replace bool
	Done    chan<- error
}

type PushMsg struct {
	Page Page
}

type PopMsg struct{}

type StatusMsg struct {
	Text  string
	IsErr bool
}

type dispatchMsg struct {
	mount *Mount
	fn    func(Page)
	done  chan<- error
}

func NavigateCmd(route string, args any) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: route, Args: args} }
}

func PopCmd() tea.Cmd {
	return func() tea.Msg { return PopMsg{} }
}

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}
