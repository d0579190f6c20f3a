package catalogs

import d "github.com/gnana997/wwspec/pkg/descriptor"

// EmailComposerName is the catalog name of the Email Composer component.
const EmailComposerName = "email-composer"

func label(en, fr string) d.LocalizedText {
	return d.LocalizedText{"en": en, "fr": fr}
}

func field(name string, t d.ValueType) d.NamedField {
	return d.NamedField{Name: name, Schema: &d.FieldSchema{Type: t}}
}

func choices(pairs ...string) *d.Options {
	opts := &d.Options{}
	for i := 0; i+1 < len(pairs); i += 2 {
		opts.Choices = append(opts.Choices, d.Choice{Value: pairs[i], Label: pairs[i+1]})
	}
	return opts
}

// objectList types an Array whose items are Objects with the given fields.
func objectList(fields ...d.NamedField) *d.Options {
	return &d.Options{Item: &d.FieldSchema{
		Type:    d.TypeObject,
		Options: &d.Options{ItemFields: d.NewFields(fields...)},
	}}
}

func formField(name, lbl, typ string, required bool, placeholder string) d.Value {
	return d.ObjectOf(
		d.F("name", d.String(name)),
		d.F("label", d.String(lbl)),
		d.F("type", d.String(typ)),
		d.F("required", d.Bool(required)),
		d.F("placeholder", d.String(placeholder)),
	)
}

func mergeSource(name, lbl, prefix string) d.Value {
	return d.ObjectOf(
		d.F("name", d.String(name)),
		d.F("label", d.String(lbl)),
		d.F("dataSource", d.Null()),
		d.F("prefix", d.String(prefix)),
	)
}

// EmailComposer returns a freshly built Email Composer descriptor.
func EmailComposer() *d.Descriptor {
	editor := d.Editor{
		Label:  label("Email Composer", "Compositeur d'email"),
		Icon:   "mail",
		Bubble: &d.Bubble{Icon: "mail"},
		CustomStylePropertiesOrder: []string{
			"emailSettings",
			"recipientSettings",
			"templateSettings",
			"attachmentSettings",
			"uiSettings",
		},
		CustomSettingsPropertiesOrder: []string{
			"dataBinding",
			"emailConfiguration",
			"recipientConfiguration",
			"templateConfiguration",
		},
	}

	events := []d.TriggerEvent{
		{
			Name:  "email:send",
			Label: label("On email send", "À l'envoi d'email"),
			Event: d.ObjectOf(
				d.F("email", d.Null()),
				d.F("recipients", d.List()),
				d.F("subject", d.String("")),
				d.F("body", d.String("")),
				d.F("attachments", d.List()),
				d.F("linkedRecords", d.ObjectOf()),
			),
			Default: true,
		},
		{
			Name:  "recipient:create",
			Label: label("On recipient create", "À la création de destinataire"),
			Event: d.ObjectOf(d.F("recipient", d.Null())),
		},
		{
			Name:  "template:preview",
			Label: label("On template preview", "À la prévisualisation du template"),
			Event: d.ObjectOf(
				d.F("template", d.Null()),
				d.F("mergedContent", d.String("")),
			),
		},
	}

	props := d.NewProperties(
		// Email
		&d.Property{
			Name:    "emailProvider",
			Label:   label("Email Provider", "Fournisseur d'email"),
			Type:    d.TypeTextSelect,
			Section: "emailSettings",
			Options: choices(
				"smtp", "SMTP",
				"sendgrid", "SendGrid",
				"mailgun", "Mailgun",
				"ses", "Amazon SES",
			),
			DefaultValue: d.String("smtp").Ptr(),
		},
		&d.Property{
			Name:         "fromEmail",
			Label:        label("From Email", "Email expéditeur"),
			Type:         d.TypeText,
			Section:      "emailSettings",
			Bindable:     true,
			DefaultValue: d.String("").Ptr(),
		},
		&d.Property{
			Name:         "fromName",
			Label:        label("From Name", "Nom expéditeur"),
			Type:         d.TypeText,
			Section:      "emailSettings",
			Bindable:     true,
			DefaultValue: d.String("").Ptr(),
		},

		// Recipients
		&d.Property{
			Name:     "recipientDataSource",
			Label:    label("Recipients Data Source", "Source de données des destinataires"),
			Type:     d.TypeCollection,
			Section:  "recipientSettings",
			Bindable: true,
		},
		&d.Property{
			Name:         "recipientNameField",
			Label:        label("Name Field", "Champ nom"),
			Type:         d.TypeText,
			Section:      "recipientSettings",
			DefaultValue: d.String("name").Ptr(),
		},
		&d.Property{
			Name:         "recipientEmailField",
			Label:        label("Email Field", "Champ email"),
			Type:         d.TypeText,
			Section:      "recipientSettings",
			DefaultValue: d.String("email").Ptr(),
		},
		&d.Property{
			Name:         "recipientIdField",
			Label:        label("ID Field", "Champ ID"),
			Type:         d.TypeText,
			Section:      "recipientSettings",
			DefaultValue: d.String("id").Ptr(),
		},
		&d.Property{
			Name:         "allowCreateRecipient",
			Label:        label("Allow Create New Recipient", "Permettre créer nouveau destinataire"),
			Type:         d.TypeBoolean,
			Section:      "recipientSettings",
			DefaultValue: d.Bool(true).Ptr(),
		},
		&d.Property{
			Name:    "createRecipientFields",
			Label:   label("Create Form Fields", "Champs formulaire création"),
			Type:    d.TypeArray,
			Section: "recipientSettings",
			Options: objectList(
				field("name", d.TypeText),
				field("label", d.TypeText),
				d.NamedField{Name: "type", Schema: &d.FieldSchema{
					Type: d.TypeTextSelect,
					Options: choices(
						"text", "Text",
						"email", "Email",
						"tel", "Phone",
						"textarea", "Textarea",
						"select", "Select",
						"checkbox", "Checkbox",
					),
				}},
				field("required", d.TypeBoolean),
				field("placeholder", d.TypeText),
			),
			DefaultValue: d.List(
				formField("firstName", "First Name", "text", true, "Enter first name"),
				formField("lastName", "Last Name", "text", true, "Enter last name"),
				formField("email", "Email", "email", true, "Enter email address"),
				formField("phone", "Phone", "tel", false, "Enter phone number"),
			).Ptr(),
		},
		&d.Property{
			Name:         "showCcBcc",
			Label:        label("Show CC/BCC by default", "Afficher CC/BCC par défaut"),
			Type:         d.TypeBoolean,
			Section:      "recipientSettings",
			DefaultValue: d.Bool(false).Ptr(),
		},

		// Templates
		&d.Property{
			Name:         "enableTemplates",
			Label:        label("Enable Templates", "Activer les templates"),
			Type:         d.TypeBoolean,
			Section:      "templateSettings",
			DefaultValue: d.Bool(true).Ptr(),
		},
		&d.Property{
			Name:     "templatesDataSource",
			Label:    label("Templates Data Source", "Source de données des templates"),
			Type:     d.TypeCollection,
			Section:  "templateSettings",
			Bindable: true,
			Hidden:   d.HiddenUnless("enableTemplates"),
		},
		&d.Property{
			Name:         "templateNameField",
			Label:        label("Template Name Field", "Champ nom template"),
			Type:         d.TypeText,
			Section:      "templateSettings",
			DefaultValue: d.String("name").Ptr(),
			Hidden:       d.HiddenUnless("enableTemplates"),
		},
		&d.Property{
			Name:         "templateSubjectField",
			Label:        label("Template Subject Field", "Champ sujet template"),
			Type:         d.TypeText,
			Section:      "templateSettings",
			DefaultValue: d.String("subject").Ptr(),
			Hidden:       d.HiddenUnless("enableTemplates"),
		},
		&d.Property{
			Name:         "templateBodyField",
			Label:        label("Template Body Field", "Champ corps template"),
			Type:         d.TypeText,
			Section:      "templateSettings",
			DefaultValue: d.String("body").Ptr(),
			Hidden:       d.HiddenUnless("enableTemplates"),
		},

		// Merge fields
		&d.Property{
			Name:         "enableMergeFields",
			Label:        label("Enable Merge Fields", "Activer les champs de fusion"),
			Type:         d.TypeBoolean,
			Section:      "templateSettings",
			DefaultValue: d.Bool(true).Ptr(),
		},
		&d.Property{
			Name:    "mergeFieldsDataSources",
			Label:   label("Merge Fields Data Sources", "Sources de données pour fusion"),
			Type:    d.TypeArray,
			Section: "templateSettings",
			Options: objectList(
				field("name", d.TypeText),
				field("label", d.TypeText),
				d.NamedField{Name: "dataSource", Schema: &d.FieldSchema{Type: d.TypeCollection, Bindable: true}},
				field("prefix", d.TypeText),
			),
			DefaultValue: d.List(
				mergeSource("recipient", "Recipient", "recipient"),
				mergeSource("property", "Property", "property"),
				mergeSource("user", "Current User", "user"),
			).Ptr(),
			Hidden: d.HiddenUnless("enableMergeFields"),
		},

		// Attachments
		&d.Property{
			Name:         "enableAttachments",
			Label:        label("Enable Attachments", "Activer les pièces jointes"),
			Type:         d.TypeBoolean,
			Section:      "attachmentSettings",
			DefaultValue: d.Bool(true).Ptr(),
		},
		&d.Property{
			Name:         "maxAttachmentSize",
			Label:        label("Max Attachment Size (MB)", "Taille max pièce jointe (MB)"),
			Type:         d.TypeNumber,
			Section:      "attachmentSettings",
			DefaultValue: d.Number(25).Ptr(),
			Hidden:       d.HiddenUnless("enableAttachments"),
		},
		&d.Property{
			Name:    "allowedFileTypes",
			Label:   label("Allowed File Types", "Types de fichiers autorisés"),
			Type:    d.TypeArray,
			Section: "attachmentSettings",
			Options: &d.Options{Item: &d.FieldSchema{Type: d.TypeText}},
			DefaultValue: d.Strings(
				".pdf", ".doc", ".docx", ".xls", ".xlsx", ".jpg", ".png", ".gif",
			).Ptr(),
			Hidden: d.HiddenUnless("enableAttachments"),
		},

		// UI
		&d.Property{
			Name:         "compactMode",
			Label:        label("Compact Mode", "Mode compact"),
			Type:         d.TypeBoolean,
			Section:      "uiSettings",
			DefaultValue: d.Bool(false).Ptr(),
		},
		&d.Property{
			Name:         "showPreviewButton",
			Label:        label("Show Preview Button", "Afficher bouton aperçu"),
			Type:         d.TypeBoolean,
			Section:      "uiSettings",
			DefaultValue: d.Bool(true).Ptr(),
		},
		&d.Property{
			Name:         "primaryColor",
			Label:        label("Primary Color", "Couleur primaire"),
			Type:         d.TypeColor,
			Section:      "uiSettings",
			DefaultValue: d.String("#3B82F6").Ptr(),
		},
		&d.Property{
			Name:         "borderRadius",
			Label:        label("Border Radius", "Rayon des bordures"),
			Type:         d.TypeLength,
			Section:      "uiSettings",
			DefaultValue: d.String("8px").Ptr(),
		},
	)

	return d.MustNew(editor, events, props)
}
