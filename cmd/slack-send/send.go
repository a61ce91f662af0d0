package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/slack-dispatch/slack"
)

type sendOptions struct {
	paramsFile  string
	channel     string
	text        string
	threadTS    string
	blocks      string
	attachments string
	block       jsonObjectList
	attachment  jsonObjectList
	header      string
	sections    []string
	plain       bool
	divider     bool
	strict      bool
	pretty      bool
}

func newSendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send [channel text | json | -]",
		Short: "Send one message and print the result as JSON",
		Long: `Send one message and print the result record {success, data, error} on stdout.

Parameters can be given as a JSON document (or "-" to read it from stdin),
as the positional pair (channel, text), in a YAML or JSON file with
--params-file, or with flags. Flags override values from the other sources.

Blocks are assembled in this order: --header, --divider, --blocks, --block,
then --section.`,
		Example: `  slack-send send '#deploys' 'Release 1.4.2 is live'
  slack-send send '{"canal":"#geral","mensagem":"Olá"}'
  slack-send send -c C024BE91L -t "Build failed" --header "CI" --section "*main* is red"
  echo '{"channel":"#ops","text":"disk full"}' | slack-send send -`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.paramsFile, "params-file", "f", "", "read parameters from a YAML or JSON file")
	flags.StringVarP(&opts.channel, "channel", "c", "", "channel id or name")
	flags.StringVarP(&opts.text, "text", "t", "", "message text")
	flags.StringVar(&opts.threadTS, "thread-ts", "", "timestamp of the parent message to reply in a thread")
	flags.StringVar(&opts.blocks, "blocks", "", "Block Kit blocks as a JSON array")
	flags.StringVar(&opts.attachments, "attachments", "", "legacy attachments as a JSON array")
	flags.Var(&opts.block, "block", "one Block Kit block as a JSON object (repeatable)")
	flags.Var(&opts.attachment, "attachment", "one attachment as a JSON object (repeatable)")
	flags.StringVar(&opts.header, "header", "", "prepend a header block with this plain text")
	flags.StringArrayVar(&opts.sections, "section", nil, "append a mrkdwn section block (repeatable)")
	flags.BoolVar(&opts.plain, "plain", false, "render --section blocks as plain_text instead of mrkdwn")
	flags.BoolVar(&opts.divider, "divider", false, "add a divider block after the header")
	flags.BoolVar(&opts.strict, "strict", false, "exit with a non-zero status when the message is not sent")
	flags.BoolVar(&opts.pretty, "pretty", false, "indent the JSON result")

	return cmd
}

func runSend(cmd *cobra.Command, root *rootOptions, opts *sendOptions, args []string) error {
	var res slack.Result
	if svc, err := root.newService(cmd); err != nil {
		res = slack.Failure(fmt.Errorf("%w: %v", slack.ErrConfiguration, err))
	} else if p, err := opts.params(cmd, args); err != nil {
		res = slack.Failure(err)
	} else {
		res = svc.Run(cmd.Context(), p)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if opts.strict && !res.Success {
		return fmt.Errorf("message not sent: %s", slack.ErrorKind(res.Err()))
	}
	return nil
}

// params merges the parameter sources into one Params value.
func (o *sendOptions) params(cmd *cobra.Command, args []string) (slack.Params, error) {
	var p slack.Params

	switch {
	case o.paramsFile != "" && len(args) > 0:
		return p, fmt.Errorf("%w: --params-file cannot be combined with positional arguments", slack.ErrValidation)
	case o.paramsFile != "":
		data, err := os.ReadFile(o.paramsFile)
		if err != nil {
			return p, fmt.Errorf("%w: %v", slack.ErrValidation, err)
		}
		if p, err = parseParamsDocument(data); err != nil {
			return p, err
		}
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return p, fmt.Errorf("%w: failed to read stdin: %v", slack.ErrValidation, err)
		}
		if p, err = slack.ParseParams(data); err != nil {
			return p, err
		}
	case len(args) > 0:
		var err error
		if p, err = slack.ParseParams(args); err != nil {
			return p, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("channel") {
		p.Channel = o.channel
	}
	if flags.Changed("text") {
		p.Text = o.text
	}
	if flags.Changed("thread-ts") {
		p.ThreadTS = o.threadTS
	}

	blocks, err := o.buildBlocks()
	if err != nil {
		return p, err
	}
	if len(blocks) > 0 {
		p.Blocks = blocks
	}

	attachments, err := o.buildAttachments()
	if err != nil {
		return p, err
	}
	if len(attachments) > 0 {
		p.Attachments = attachments
	}

	return p, nil
}

func (o *sendOptions) buildBlocks() ([]json.RawMessage, error) {
	var blocks []json.RawMessage

	if o.header != "" {
		header, err := slack.HeaderBlock(o.header)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, header)
	}
	if o.divider {
		blocks = append(blocks, slack.DividerBlock())
	}
	if o.blocks != "" {
		list, err := parseObjectArray("blocks", o.blocks)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, list...)
	}
	blocks = append(blocks, o.block.items...)
	for _, text := range o.sections {
		section, err := slack.SectionBlock(text, !o.plain)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, section)
	}

	return blocks, nil
}

func (o *sendOptions) buildAttachments() ([]json.RawMessage, error) {
	var attachments []json.RawMessage
	if o.attachments != "" {
		list, err := parseObjectArray("attachments", o.attachments)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, list...)
	}
	return append(attachments, o.attachment.items...), nil
}

func parseObjectArray(name, raw string) ([]json.RawMessage, error) {
	p, err := slack.ParseParams(map[string]any{name: raw})
	if err != nil {
		return nil, err
	}
	if name == "attachments" {
		return p.Attachments, nil
	}
	return p.Blocks, nil
}

// parseParamsDocument decodes a YAML or JSON parameter file. JSON is a
// subset of YAML, so one decoder covers both.
func parseParamsDocument(data []byte) (slack.Params, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return slack.Params{}, fmt.Errorf("%w: malformed parameters file: %v", slack.ErrValidation, err)
	}
	if len(root.Content) == 0 {
		return slack.Params{}, fmt.Errorf("%w: parameters file is empty", slack.ErrValidation)
	}

	doc, err := nodeValue(root.Content[0])
	if err != nil {
		return slack.Params{}, fmt.Errorf("%w: malformed parameters file: %v", slack.ErrValidation, err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return slack.Params{}, fmt.Errorf("%w: parameters file must hold a mapping", slack.ErrValidation)
	}
	return slack.ParseParams(m)
}

// nodeValue converts a YAML node into plain Go values. Numbers become
// json.Number holding the literal text, so timestamps such as
// 1700000000.000100 keep their trailing zeros.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		if n.Tag == "!!int" || n.Tag == "!!float" {
			if num := json.Number(n.Value); json.Valid([]byte(num)) {
				return num, nil
			}
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
