package vulkan

import (
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"

	"github.com/vkngwrapper/triangle/bootstrap"
)

var severities = []struct {
	flag     ext_debug_utils.DebugUtilsMessageSeverityFlags
	severity bootstrap.Severity
}{
	{ext_debug_utils.SeverityVerbose, bootstrap.SeverityVerbose},
	{ext_debug_utils.SeverityInfo, bootstrap.SeverityInfo},
	{ext_debug_utils.SeverityWarning, bootstrap.SeverityWarning},
	{ext_debug_utils.SeverityError, bootstrap.SeverityError},
}

var messageTypes = []struct {
	flag        ext_debug_utils.DebugUtilsMessageTypeFlags
	messageType bootstrap.MessageType
}{
	{ext_debug_utils.TypeGeneral, bootstrap.TypeGeneral},
	{ext_debug_utils.TypeValidation, bootstrap.TypeValidation},
	{ext_debug_utils.TypePerformance, bootstrap.TypePerformance},
}

func severityFlags(config bootstrap.DiagnosticsConfig) ext_debug_utils.DebugUtilsMessageSeverityFlags {
	var flags ext_debug_utils.DebugUtilsMessageSeverityFlags
	for _, severity := range config.Severities() {
		for _, s := range severities {
			if s.severity == severity {
				flags |= s.flag
			}
		}
	}
	return flags
}

func typeFlags(types bootstrap.MessageType) ext_debug_utils.DebugUtilsMessageTypeFlags {
	var flags ext_debug_utils.DebugUtilsMessageTypeFlags
	for _, t := range messageTypes {
		if types&t.messageType != 0 {
			flags |= t.flag
		}
	}
	return flags
}

func convertMessage(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bootstrap.Message {
	msg := bootstrap.Message{Severity: bootstrap.SeverityVerbose}

	// A message carries a single severity bit; keep the highest just in case.
	for _, s := range severities {
		if severity&s.flag != 0 {
			msg.Severity = s.severity
		}
	}
	for _, t := range messageTypes {
		if msgType&t.flag != 0 {
			msg.Types |= t.messageType
		}
	}

	if data != nil {
		msg.IDName = data.MessageIDName
		msg.IDNumber = int(data.MessageIDNumber)
		msg.Text = data.Message
	}
	return msg
}

func messengerOptions(sink *bootstrap.DiagnosticsSink) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: severityFlags(sink.Config()),
		MessageType:     typeFlags(sink.Config().Types),
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			return sink.Handle(convertMessage(msgType, severity, data))
		},
	}
}

type messenger struct {
	extension ext_debug_utils.ExtensionDriver
	messenger ext_debug_utils.DebugUtilsMessenger
}

func (m *messenger) Destroy() {
	m.extension.DestroyDebugUtilsMessenger(m.messenger, nil)
}
